package resource

import (
	"fmt"
	"strconv"
	"strings"

	"StoryBoxAdmin/pkg/logger"
	"StoryBoxAdmin/pkg/validation"
	"StoryBoxAdmin/services/admin-cli/internal/confirm"
	"StoryBoxAdmin/services/admin-cli/internal/notify"
)

// Plan тариф VIP подписки
type Plan struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Price    float64  `json:"price" yaml:"price"`
	Features []string `json:"features" yaml:"features"`
	Users    int      `json:"users" yaml:"users"`
	Popular  bool     `json:"popular" yaml:"popular"`
}

func (p Plan) RecordID() string { return p.ID }

func (p Plan) TableHeaders() []string {
	return []string{"ID", "NAME", "PRICE", "USERS", "POPULAR", "FEATURES"}
}

func (p Plan) TableCells() []string {
	return []string{p.ID, p.Name, fmt.Sprintf("$%.2f/month", p.Price), strconv.Itoa(p.Users),
		strconv.FormatBool(p.Popular), strings.Join(p.Features, ", ")}
}

type planWire struct {
	Name     string   `mapstructure:"name"`
	Price    float64  `mapstructure:"price"`
	Features []string `mapstructure:"features"`
	Users    int      `mapstructure:"users"`
	Popular  bool     `mapstructure:"popular"`
}

func decodePlan(fields map[string]any) (Plan, error) {
	var w planWire
	if err := decodeWire(fields, &w); err != nil {
		return Plan{}, err
	}
	features := w.Features
	if features == nil {
		features = []string{}
	}
	return Plan{
		ID:       recordID(fields["id"]),
		Name:     w.Name,
		Price:    w.Price,
		Features: features,
		Users:    w.Users,
		Popular:  w.Popular,
	}, nil
}

// DefaultPlans тарифы, доступные без сервера
func DefaultPlans() []Fields {
	return []Fields{
		{"id": "1", "name": "Free", "price": 0.0, "users": 15000, "popular": false,
			"features": []string{"Watch with ads", "SD quality", "Limited content"}},
		{"id": "2", "name": "Basic", "price": 4.99, "users": 3500, "popular": false,
			"features": []string{"Ad-free", "HD quality", "Download videos", "Early access"}},
		{"id": "3", "name": "Premium", "price": 9.99, "users": 8200, "popular": true,
			"features": []string{"All Basic features", "4K quality", "Offline downloads", "Exclusive content", "Priority support"}},
		{"id": "4", "name": "Ultimate", "price": 19.99, "users": 2100, "popular": false,
			"features": []string{"All Premium features", "Family sharing (5 devices)", "VIP events access", "24/7 premium support"}},
	}
}

func validatePlan(fields Fields, updating bool) error {
	if updating {
		return nil
	}
	return validation.NewValidator().ValidateRequiredFields(fields, map[string]string{"name": "name"})
}

// PlanDefinition описание ресурса тарифов
func PlanDefinition() Definition[Plan] {
	return Definition[Plan]{
		Name:     "plan",
		ListKeys: []string{"plans"},
		Decode:   decodePlan,
		Validate: validatePlan,
		Flags: []Flag[Plan]{
			{
				Name:            "popular",
				Policy:          LocalOnly,
				Get:             func(p Plan) bool { return p.Popular },
				Set:             func(p Plan, v bool) Plan { p.Popular = v; return p },
				EnabledMessage:  "Plan marked as popular",
				DisabledMessage: "Plan is no longer marked as popular",
				FailureMessage:  "Failed to update plan",
			},
		},
		DeletePrompt: func(Plan) confirm.Prompt { return deletePrompt("Delete Plan", "plan") },
		Messages: Messages{
			LoadFailed:   "Failed to load plans",
			Created:      "Plan created successfully",
			CreateFailed: "Failed to save plan",
			Updated:      "Plan updated successfully",
			UpdateFailed: "Failed to save plan",
			Deleted:      "Plan deleted successfully",
			DeleteFailed: "Failed to delete plan",
		},
	}
}

// NewPlans создает контроллер тарифов поверх backend. nil означает тарифы по умолчанию в памяти.
func NewPlans(backend Backend, gate confirm.Requester, notifier notify.Notifier, log logger.Logger) *Controller[Plan] {
	if backend == nil {
		backend = NewMemoryBackend(DefaultPlans())
	}
	return NewController(PlanDefinition(), backend, gate, notifier, log)
}
