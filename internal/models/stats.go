package models

type CardStats struct {
	TotalCards      int     `json:"total_cards"`
	TotalReviews    int     `json:"total_reviews"`
	CardsDue        int     `json:"cards_due"`
	CardsDueSoon    int     `json:"cards_due_soon"`
	CardsNew        int     `json:"cards_new"`
	CardsMastered   int     `json:"cards_mastered"`
	CardsStruggling int     `json:"cards_struggling"`
	AvgEaseFactor   float64 `json:"avg_ease_factor"`
	AvgIntervalDays float64 `json:"avg_interval_days"`
}

type RatingStat struct {
	Rating string `json:"rating"`
	Count  int    `json:"count"`
}

type POSStat struct {
	POS        string `json:"pos"`
	TotalCards int    `json:"total_cards"`
}

type StatsSummary struct {
	Cards   CardStats    `json:"cards"`
	Ratings []RatingStat `json:"ratings"`
	ByPOS   []POSStat    `json:"by_pos"`
}
