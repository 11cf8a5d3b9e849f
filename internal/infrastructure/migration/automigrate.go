package migration

import (
	"github.com/orris-inc/archy/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.TicketMetadataModel{},
		&models.TicketMessageModel{},
		&models.TicketFileModel{},
	}
}
