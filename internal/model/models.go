package model

// All lists every persisted model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Company{},
		&Customer{},
		&PaymentTerm{},
		&TaxRate{},
		&Item{},
		&Contract{},
		&ContractLine{},
		&SalesDocument{},
		&SalesDocumentLine{},
		&DocumentCounter{},
		&ContractRun{},
		&Activity{},
	}
}
