package domain

// DayUsage is the credit total for one calendar day.
type DayUsage struct {
	Day     string `json:"day"`
	Date    string `json:"date"`
	Credits int64  `json:"credits"`
}

// CreditTypeUsage aggregates the month's transactions sharing a display label.
type CreditTypeUsage struct {
	Type    string `json:"type"`
	Count   int64  `json:"count"`
	Credits int64  `json:"credits"`
}

// UsageStatistics is the dashboard usage view for one user.
type UsageStatistics struct {
	WeeklyUsage       []DayUsage        `json:"weekly_usage"`
	CreditTypes       []CreditTypeUsage `json:"credit_types"`
	MonthlyUsed       int64             `json:"monthly_used"`
	MonthlyAllocation int64             `json:"monthly_allocation"`
}

// Empty returns the zero statistics with non-nil empty sequences.
func Empty() UsageStatistics {
	return UsageStatistics{
		WeeklyUsage: []DayUsage{},
		CreditTypes: []CreditTypeUsage{},
	}
}

// MonthlyRemaining is the unspent allocation, floored at zero.
func (s UsageStatistics) MonthlyRemaining() int64 {
	if remaining := s.MonthlyAllocation - s.MonthlyUsed; remaining > 0 {
		return remaining
	}
	return 0
}
