// Package engine turns data snapshots into alerts. It is a pure
// function of the rules, the reference instant and the snapshot; every
// rule scans its whole input set independently of the others.
package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opsdeck/opsdeck/internal/alert/domain"
	"github.com/opsdeck/opsdeck/internal/metric"
)

func Evaluate(rules domain.Rules, now time.Time, snap domain.Snapshot) []domain.Alert {
	var alerts []domain.Alert
	alerts = append(alerts, lowBalance(rules, snap.Wallets)...)
	alerts = append(alerts, budgetExceeded(rules, now, snap.UsageLogs)...)
	alerts = append(alerts, renewals(rules, now, snap.Subscriptions)...)
	alerts = append(alerts, rotationDue(rules, now, snap.Credentials)...)
	alerts = append(alerts, openIncidents(snap.Incidents)...)
	alerts = append(alerts, lowRunway(rules, snap.Wallets)...)

	// Most severe first; ties keep rule emission order.
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.Rank() < alerts[j].Severity.Rank()
	})
	return alerts
}

func alertID(t domain.Type, rowID snowflake.ID) string {
	return fmt.Sprintf("%s:%s", t, rowID)
}

func lowBalance(rules domain.Rules, wallets []domain.WalletRow) []domain.Alert {
	var out []domain.Alert
	for _, w := range wallets {
		if w.CurrentBalanceCents > w.LowThresholdCents {
			continue
		}

		severity := domain.SeverityMedium
		switch {
		case w.CurrentBalanceCents <= 0:
			severity = domain.SeverityCritical
		case float64(w.CurrentBalanceCents) <= float64(w.LowThresholdCents)*rules.LowBalanceHighFraction:
			severity = domain.SeverityHigh
		}

		out = append(out, domain.Alert{
			ID:       alertID(domain.TypeLowBalance, w.ID),
			Type:     domain.TypeLowBalance,
			Severity: severity,
			Title:    fmt.Sprintf("Low balance: %s", w.ToolName),
			Message: fmt.Sprintf("Balance %s is at or below the %s threshold",
				money(w.CurrentBalanceCents, w.Currency),
				money(w.LowThresholdCents, w.Currency)),
			Link: fmt.Sprintf("/wallets/%s", w.ID),
		})
	}
	return out
}

func budgetExceeded(rules domain.Rules, now time.Time, logs []domain.UsageRow) []domain.Alert {
	year, month, _ := now.UTC().Date()

	var out []domain.Alert
	for _, u := range logs {
		if u.Month.Year() != year || u.Month.Month() != month {
			continue
		}
		if u.BudgetLimitCents == nil || u.UsageAmountCents <= *u.BudgetLimitCents {
			continue
		}

		pct := metric.BudgetUtilizationPct(u.UsageAmountCents, u.BudgetLimitCents)
		if pct == nil {
			continue
		}
		// Severity tiers compare the truncated percentage, so 149.9%
		// lands on high, not critical.
		truncated := int(*pct)
		severity := domain.SeverityMedium
		switch {
		case truncated >= rules.BudgetCriticalPct:
			severity = domain.SeverityCritical
		case truncated >= rules.BudgetHighPct:
			severity = domain.SeverityHigh
		}

		out = append(out, domain.Alert{
			ID:       alertID(domain.TypeBudgetExceeded, u.ID),
			Type:     domain.TypeBudgetExceeded,
			Severity: severity,
			Title:    fmt.Sprintf("Budget exceeded: %s", u.ToolName),
			Message:  fmt.Sprintf("This month's usage is at %d%% of budget", truncated),
			Link:     "/usage",
		})
	}
	return out
}

func renewals(rules domain.Rules, now time.Time, subs []domain.SubscriptionRow) []domain.Alert {
	var out []domain.Alert
	for _, sub := range subs {
		if sub.RenewalDate == nil {
			continue
		}
		days := metric.DaysUntil(now, *sub.RenewalDate)

		switch {
		case days < 0:
			out = append(out, domain.Alert{
				ID:       alertID(domain.TypeOverdueRenewal, sub.ID),
				Type:     domain.TypeOverdueRenewal,
				Severity: domain.SeverityHigh,
				Title:    fmt.Sprintf("Renewal overdue: %s", sub.ToolName),
				Message:  fmt.Sprintf("Renewal was due %d days ago", -days),
				Link:     "/billing",
			})
		case days <= rules.RenewalWindowDays:
			severity := domain.SeverityLow
			if days <= rules.RenewalUrgentDays {
				severity = domain.SeverityHigh
			}
			out = append(out, domain.Alert{
				ID:       alertID(domain.TypeUpcomingRenewal, sub.ID),
				Type:     domain.TypeUpcomingRenewal,
				Severity: severity,
				Title:    fmt.Sprintf("Upcoming renewal: %s", sub.ToolName),
				Message:  fmt.Sprintf("Renews in %d days", days),
				Link:     "/billing",
			})
		}
	}
	return out
}

func rotationDue(rules domain.Rules, now time.Time, creds []domain.CredentialRow) []domain.Alert {
	var out []domain.Alert
	for _, c := range creds {
		if c.LastRotated == nil {
			continue
		}
		policyDays := metric.ParsePolicyDays(c.RotationPolicy)
		if policyDays == nil {
			// Policy text without a day count never fires, no matter
			// how stale the credential is.
			continue
		}

		since := metric.DaysSince(now, *c.LastRotated)
		if since <= *policyDays {
			continue
		}

		severity := domain.SeverityMedium
		if float64(since) > float64(*policyDays)*rules.RotationHighMultiplier {
			severity = domain.SeverityHigh
		}

		out = append(out, domain.Alert{
			ID:       alertID(domain.TypeRotationDue, c.ID),
			Type:     domain.TypeRotationDue,
			Severity: severity,
			Title:    fmt.Sprintf("Credential rotation due: %s", c.ToolName),
			Message:  fmt.Sprintf("Last rotated %d days ago (policy: every %d days)", since, *policyDays),
			Link:     "/credentials",
		})
	}
	return out
}

func openIncidents(incidents []domain.IncidentRow) []domain.Alert {
	var out []domain.Alert
	for _, inc := range incidents {
		if inc.Severity != domain.SeverityHigh && inc.Severity != domain.SeverityCritical {
			continue
		}
		out = append(out, domain.Alert{
			ID:       alertID(domain.TypeOpenIncident, inc.ID),
			Type:     domain.TypeOpenIncident,
			Severity: inc.Severity,
			Title:    fmt.Sprintf("Open incident: %s", inc.ToolName),
			Message:  fmt.Sprintf("Unresolved %s incident (%s severity)", inc.Type, inc.Severity),
			Link:     fmt.Sprintf("/incidents/%s", inc.ID),
		})
	}
	return out
}

func lowRunway(rules domain.Rules, wallets []domain.WalletRow) []domain.Alert {
	var out []domain.Alert
	for _, w := range wallets {
		// Wallets already at or below threshold alert as low_balance.
		if w.CurrentBalanceCents <= w.LowThresholdCents {
			continue
		}
		burn := metric.BurnRate(w.RecentUsageCentsDesc)
		runway := metric.RunwayMonths(w.CurrentBalanceCents, burn)
		if runway == nil || *runway >= rules.LowRunwayMonths {
			continue
		}

		out = append(out, domain.Alert{
			ID:       alertID(domain.TypeLowRunway, w.ID),
			Type:     domain.TypeLowRunway,
			Severity: domain.SeverityHigh,
			Title:    fmt.Sprintf("Low runway: %s", w.ToolName),
			Message:  fmt.Sprintf("Roughly %.1f months of balance left at the current burn rate", *runway),
			Link:     fmt.Sprintf("/wallets/%s", w.ID),
		})
	}
	return out
}

func money(cents int64, currency string) string {
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%s %.2f", currency, float64(cents)/100)
}
