package bootstrap

import (
	"github.com/TestimonyAdegoke/montessa-sub006/config"
)

// Config is the constraint for application configuration types. Any struct
// embedding config.ServiceConfig that also defines ApplyDefaults and
// Validate satisfies it.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
