package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/ledgerlab/reconcile/internal/common"
	"github.com/ledgerlab/reconcile/internal/currency"
	"github.com/ledgerlab/reconcile/internal/match"
)

// rateEntry is one configured exchange rate observation.
type rateEntry struct {
	From  string  `mapstructure:"from"`
	To    string  `mapstructure:"to"`
	Date  string  `mapstructure:"date"`
	Value float64 `mapstructure:"value"`
}

// LoadMatchConfig builds the matcher configuration from viper settings,
// starting from the stock defaults. Unset keys keep their defaults.
func LoadMatchConfig() (match.Config, error) {
	cfg := match.DefaultConfig()

	if viper.IsSet("matching.date_window_days") {
		cfg.DateWindowDays = viper.GetInt("matching.date_window_days")
	}
	if viper.IsSet("matching.min_suggest_score") {
		cfg.MinSuggestScore = viper.GetInt("matching.min_suggest_score")
	}
	if viper.IsSet("matching.amount_tolerance") {
		cfg.AmountTolerance = viper.GetFloat64("matching.amount_tolerance")
	}
	if viper.IsSet("matching.max_percent_diff") {
		cfg.MaxPercentDiff = viper.GetInt("matching.max_percent_diff")
	}
	if viper.IsSet("matching.high_threshold") {
		cfg.HighThreshold = viper.GetInt("matching.high_threshold")
	}
	if viper.IsSet("matching.medium_threshold") {
		cfg.MediumThreshold = viper.GetInt("matching.medium_threshold")
	}

	if cfg.DateWindowDays < 0 {
		return cfg, fmt.Errorf("%w: matching.date_window_days must not be negative", common.ErrInvalidConfig)
	}
	if cfg.MinSuggestScore < 0 || cfg.MinSuggestScore > 100 {
		return cfg, fmt.Errorf("%w: matching.min_suggest_score must be between 0 and 100", common.ErrInvalidConfig)
	}
	if cfg.AmountTolerance < 0 {
		return cfg, fmt.Errorf("%w: matching.amount_tolerance must not be negative", common.ErrInvalidConfig)
	}
	if cfg.MaxPercentDiff < 0 {
		return cfg, fmt.Errorf("%w: matching.max_percent_diff must not be negative", common.ErrInvalidConfig)
	}
	if cfg.HighThreshold < cfg.MediumThreshold {
		return cfg, fmt.Errorf("%w: matching.high_threshold must not be below matching.medium_threshold", common.ErrInvalidConfig)
	}

	aliases := loadAliases()
	if aliases != nil {
		cfg.Aliases = aliases
	} else {
		cfg.Aliases = match.DefaultAliases()
	}

	rates, err := loadRates()
	if err != nil {
		return cfg, err
	}
	if rates != nil {
		cfg.Rates = rates
	}

	return cfg, nil
}

// loadAliases reads matching.aliases, a map of canonical vendor name to its
// alternate spellings, plus matching.never_merge pairs.
func loadAliases() *match.AliasCatalog {
	raw := viper.GetStringMapStringSlice("matching.aliases")
	if len(raw) == 0 {
		return nil
	}

	var neverMerge [][2]string
	for _, pair := range viper.GetStringSlice("matching.never_merge") {
		var a, b string
		if _, err := fmt.Sscanf(pair, "%s %s", &a, &b); err == nil {
			neverMerge = append(neverMerge, [2]string{a, b})
		}
	}

	return match.NewAliasCatalog(raw, neverMerge)
}

// loadRates reads matching.rates, a list of dated exchange rate observations.
func loadRates() (*currency.StaticRates, error) {
	if !viper.IsSet("matching.rates") {
		return nil, nil
	}

	var entries []rateEntry
	if err := viper.UnmarshalKey("matching.rates", &entries); err != nil {
		return nil, fmt.Errorf("%w: matching.rates: %v", common.ErrInvalidConfig, err)
	}

	rates := currency.NewStaticRates()
	for i, e := range entries {
		date, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: matching.rates[%d].date %q", common.ErrInvalidConfig, i, e.Date)
		}
		if e.Value <= 0 {
			return nil, fmt.Errorf("%w: matching.rates[%d].value must be positive", common.ErrInvalidConfig, i)
		}
		rates.Add(e.From, e.To, date, e.Value)
	}
	return rates, nil
}
