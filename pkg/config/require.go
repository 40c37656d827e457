package config

import "fmt"

// Validate reports the first setting that cannot be used to start the service.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for DB_DRIVER=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for DB_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (must be postgres or sqlite)", c.DBDriver)
	}

	if c.MilestoneEvery < 1 {
		return fmt.Errorf("MILESTONE_EVERY must be positive, got %d", c.MilestoneEvery)
	}
	if c.DiscountPercentage < 1 || c.DiscountPercentage > 100 {
		return fmt.Errorf("DISCOUNT_PERCENTAGE must be within 1..100, got %d", c.DiscountPercentage)
	}

	switch c.CheckedOutCartPolicy {
	case CartPolicyReadable, CartPolicyInvalidate:
	default:
		return fmt.Errorf("invalid CHECKED_OUT_CART_POLICY %q (must be readable or invalidate)", c.CheckedOutCartPolicy)
	}

	return nil
}
