package model

// All returns every model managed by auto-migration, in dependency order
func All() []interface{} {
	return []interface{}{
		&Company{},
		&User{},
		&CompanyInvitation{},
		&Plant{},
		&Resource{},
		&ResourceUsage{},
		&Machinery{},
		&MaintenanceHistory{},
		&MarketplaceListing{},
		&TaskAssignment{},
		&LeaveRecord{},
		&ContactForm{},
		&Sensor{},
		&SensorReading{},
	}
}
