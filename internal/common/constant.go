package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key carrying
// the bearer credential on inbound requests.
const AuthorizationHeaderName = "authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"
