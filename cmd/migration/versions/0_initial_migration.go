package versions

import (
	"log"
	"misterfit_platform/misterfit/billing"
	"misterfit_platform/misterfit/schema"

	"gorm.io/gorm"
)

/*
 * The previous backend managed its schema through a hosted database console,
 * so index and constraint names do not match what gorm generates. These
 * migrations drop the old ones and let gorm recreate them.
 */
func dropConstraints(model interface{}, txn *gorm.DB, constraints ...string) error {
	for _, constraint := range constraints {
		if err := txn.Migrator().DropConstraint(model, constraint); err != nil {
			return err
		}
	}
	return nil
}

type valueConversion struct {
	oldValue string
	newValue string
}

func migrateUser(txn *gorm.DB) error {
	log.Println("migrating table 'users'")

	type User struct {
		Password []byte
	}

	if err := txn.Migrator().RenameColumn(&User{}, "name", "full_name"); err != nil {
		return err
	}

	if err := txn.Migrator().RenameColumn(&User{}, "password_hash", "password"); err != nil {
		return err
	}

	if err := txn.Migrator().RenameColumn(&User{}, "user_type", "role"); err != nil {
		return err
	}

	if err := txn.Migrator().RenameColumn(&User{}, "unique_share_id", "share_code"); err != nil {
		return err
	}

	// Update data type from string to bytes
	if err := txn.Migrator().AlterColumn(&User{}, "password"); err != nil {
		return err
	}

	roleConversions := []valueConversion{
		{oldValue: "aluno", newValue: schema.RoleStudent},
		{oldValue: "personal", newValue: schema.RoleTrainer},
	}
	for _, conv := range roleConversions {
		err := txn.Model(&User{}).Where("role = ?", conv.oldValue).Update("role", conv.newValue).Error
		if err != nil {
			return err
		}
	}

	// Renaming a column does not rename its unique constraint, so the drop
	// still targets the legacy name.
	if err := dropConstraints(&User{}, txn, "users_email_key", "users_unique_share_id_key"); err != nil {
		return err
	}

	log.Println("table 'users' migration complete")

	return nil
}

func migrateFinancialPlan(txn *gorm.DB) error {
	log.Println("migrating table 'financial_plans'")

	type FinancialPlan struct{}

	periodConversions := []valueConversion{
		{oldValue: "semanal", newValue: billing.PeriodWeekly},
		{oldValue: "quinzenal", newValue: billing.PeriodBiweekly},
		{oldValue: "mensal", newValue: billing.PeriodMonthly},
		{oldValue: "trimestral", newValue: billing.PeriodQuarterly},
		{oldValue: "semestral", newValue: billing.PeriodSemiannual},
		{oldValue: "anual", newValue: billing.PeriodAnnual},
	}
	for _, conv := range periodConversions {
		err := txn.Model(&FinancialPlan{}).Where("payment_period = ?", conv.oldValue).Update("payment_period", conv.newValue).Error
		if err != nil {
			return err
		}
	}

	if err := dropConstraints(&FinancialPlan{}, txn, "financial_plans_student_email_trainer_email_key"); err != nil {
		return err
	}

	log.Println("table 'financial_plans' migration complete")

	return nil
}

func migrateInvoice(txn *gorm.DB) error {
	log.Println("migrating table 'invoices'")

	type Invoice struct{}

	if err := dropConstraints(&Invoice{}, txn, "invoices_invoice_number_key"); err != nil {
		return err
	}

	log.Println("table 'invoices' migration complete")

	return nil
}

func dropUnusedTables(txn *gorm.DB) error {
	tables := []string{"password_resets", "refresh_tokens", "notifications"}
	for _, table := range tables {
		err := txn.Migrator().DropTable(table)
		if err != nil {
			return err
		}
	}

	return nil
}

func Migration_0_initial_migration(txn *gorm.DB) error {
	log.Println("performing initial migration to new backend schema")

	if err := migrateUser(txn); err != nil {
		return err
	}

	if err := migrateFinancialPlan(txn); err != nil {
		return err
	}

	if err := migrateInvoice(txn); err != nil {
		return err
	}

	if err := dropUnusedTables(txn); err != nil {
		return err
	}

	// AutoMigrate fills in anything the old schema was missing, including
	// tables that did not exist before.
	if err := txn.AutoMigrate(schema.AllModels()...); err != nil {
		return err
	}

	log.Println("initial migration complete")

	return nil
}
