package model

import "time"

type UsageItemType string

const (
	UsageDiagnosis UsageItemType = "diagnosis"
	UsageCPTCode   UsageItemType = "cpt_code"
)

func (t UsageItemType) Valid() bool {
	return t == UsageDiagnosis || t == UsageCPTCode
}

// UsageStat counts how often a user entered a value.
type UsageStat struct {
	UserEmail  string        `bson:"user_email" json:"user_email"`
	ItemType   UsageItemType `bson:"item_type" json:"item_type"`
	ItemValue  string        `bson:"item_value" json:"item_value"`
	UsageCount int64         `bson:"usage_count" json:"usage_count"`
	FirstUsed  time.Time     `bson:"first_used" json:"first_used"`
	LastUsed   time.Time     `bson:"last_used" json:"last_used"`
}

type FrequentCPTCode struct {
	Code string `json:"code"`
}

type FrequentDiagnosis struct {
	Diagnosis string `json:"diagnosis"`
}
