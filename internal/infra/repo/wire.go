package repo

import (
	"github.com/google/wire"
)

var RegistrySet = wire.NewSet(
	NewRegistryFromConfig,
)
