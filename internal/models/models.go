package models

// All lists every persisted model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&AdminUser{},
		&Client{},
		&Collaborator{},
		&Document{},
		&DocumentShare{},
		&DocumentNotification{},
		&Project{},
		&QuoteRequest{},
		&ContactMessage{},
		&NewsletterSubscriber{},
		&BlogPost{},
	}
}
