package metrics

import "github.com/google/wire"

// ProviderSet is the Wire provider set for the metrics server.
var ProviderSet = wire.NewSet(New)
