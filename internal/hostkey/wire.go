package hostkey

import "github.com/google/wire"

// ProviderSet exposes Provide as a Wire provider. The cmd/shenron
// graph does not include this set; it reaches Provide through
// internal/cmd.ProvideHostKey.
var ProviderSet = wire.NewSet(Provide)
