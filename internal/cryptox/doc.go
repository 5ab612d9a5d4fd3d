// Package cryptox is the key and signature engine of sigrelay.
//
// Keys live on the secp256k1 curve and are exchanged as hex strings: private
// keys are 32-byte scalars, public keys are 32-byte BIP-340 x-only points.
// The x-only form is the only accepted public key encoding, so every bit of a
// public key string is significant.
//
// Contents
//
//   - Key generation and derivation (GenerateKeyPair, PublicKeyOf, SameKey)
//   - BIP-340 Schnorr signatures over sha256(message) (Sign, Verify)
//   - ECDH shared secrets (DeriveSharedSecret)
//   - Content hashing and display fingerprints (Hash, Fingerprint)
//   - Passphrase sealing of private keys at rest (SealPrivateKey, OpenPrivateKey)
//
// Every other package treats keys and signatures as opaque strings and goes
// through this package to check them.
package cryptox
