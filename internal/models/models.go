package models

// AllModels lists every persisted model for migrations
func AllModels() []interface{} {
	return []interface{}{
		&Student{},
		&Admin{},
		&Course{},
	}
}
