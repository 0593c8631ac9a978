package alert

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/opsdeck/opsdeck/internal/alert/domain"
)

// RulesHolder hands out the current alert thresholds and swaps them in
// place when alerts.yml changes on disk.
type RulesHolder struct {
	current atomic.Value // holds domain.Rules
}

func NewRulesHolder() (*RulesHolder, error) {
	v := viper.New()

	v.SetConfigName("alerts")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/opsdeck/config") // Volume-mounted config
	v.AddConfigPath("/etc/opsdeck")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("OPSDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := domain.DefaultRules()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		v.SetDefault("alerts.renewalWindowDays", defaults.RenewalWindowDays)
		v.SetDefault("alerts.renewalUrgentDays", defaults.RenewalUrgentDays)
		v.SetDefault("alerts.budgetHighPct", defaults.BudgetHighPct)
		v.SetDefault("alerts.budgetCriticalPct", defaults.BudgetCriticalPct)
		v.SetDefault("alerts.lowBalanceHighFraction", defaults.LowBalanceHighFraction)
		v.SetDefault("alerts.rotationHighMultiplier", defaults.RotationHighMultiplier)
		v.SetDefault("alerts.lowRunwayMonths", defaults.LowRunwayMonths)
	}

	var rules domain.Rules
	if err := v.UnmarshalKey("alerts", &rules); err != nil {
		return nil, err
	}
	if err := validateRules(rules); err != nil {
		return nil, err
	}

	holder := &RulesHolder{}
	holder.current.Store(rules)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated domain.Rules
		if err := v.UnmarshalKey("alerts", &updated); err != nil {
			log.Printf("[alert-rules] reload failed: %v", err)
			return
		}
		if err := validateRules(updated); err != nil {
			log.Printf("[alert-rules] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[alert-rules] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *RulesHolder) Get() domain.Rules {
	return h.current.Load().(domain.Rules)
}

func validateRules(r domain.Rules) error {
	if r.RenewalWindowDays <= 0 || r.RenewalUrgentDays <= 0 {
		return errors.New("alerts.renewalWindowDays and alerts.renewalUrgentDays must be positive")
	}
	if r.RenewalUrgentDays > r.RenewalWindowDays {
		return errors.New("alerts.renewalUrgentDays cannot exceed alerts.renewalWindowDays")
	}
	if r.BudgetHighPct <= 100 || r.BudgetCriticalPct < r.BudgetHighPct {
		return errors.New("alerts.budgetHighPct must exceed 100 and not exceed alerts.budgetCriticalPct")
	}
	if r.LowBalanceHighFraction <= 0 || r.LowBalanceHighFraction >= 1 {
		return errors.New("alerts.lowBalanceHighFraction must be between 0 and 1")
	}
	if r.RotationHighMultiplier < 1 {
		return errors.New("alerts.rotationHighMultiplier must be at least 1")
	}
	if r.LowRunwayMonths <= 0 {
		return errors.New("alerts.lowRunwayMonths must be positive")
	}
	return nil
}
