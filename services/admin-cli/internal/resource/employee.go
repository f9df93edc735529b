package resource

import (
	"strconv"

	"StoryBoxAdmin/pkg/logger"
	"StoryBoxAdmin/pkg/validation"
	"StoryBoxAdmin/services/admin-cli/internal/client"
	"StoryBoxAdmin/services/admin-cli/internal/confirm"
	"StoryBoxAdmin/services/admin-cli/internal/notify"
)

// Employee сотрудник панели администрирования
type Employee struct {
	ID               string  `json:"id" yaml:"id"`
	Name             string  `json:"name" yaml:"name"`
	Email            string  `json:"email" yaml:"email"`
	Phone            string  `json:"phone,omitempty" yaml:"phone,omitempty"`
	Position         string  `json:"position,omitempty" yaml:"position,omitempty"`
	Department       string  `json:"department,omitempty" yaml:"department,omitempty"`
	Salary           float64 `json:"salary,omitempty" yaml:"salary,omitempty"`
	JoinDate         string  `json:"joinDate,omitempty" yaml:"joinDate,omitempty"`
	Address          string  `json:"address,omitempty" yaml:"address,omitempty"`
	EmergencyContact string  `json:"emergencyContact,omitempty" yaml:"emergencyContact,omitempty"`
	Active           bool    `json:"active" yaml:"active"`
}

func (e Employee) RecordID() string { return e.ID }

func (e Employee) TableHeaders() []string {
	return []string{"ID", "NAME", "EMAIL", "POSITION", "DEPARTMENT", "ACTIVE"}
}

func (e Employee) TableCells() []string {
	return []string{e.ID, e.Name, e.Email, e.Position, e.Department, strconv.FormatBool(e.Active)}
}

type employeeWire struct {
	Name             string   `mapstructure:"name"`
	Email            string   `mapstructure:"email"`
	Phone            string   `mapstructure:"phone"`
	Position         string   `mapstructure:"position"`
	Department       string   `mapstructure:"department"`
	Salary           float64  `mapstructure:"salary"`
	JoinDate         string   `mapstructure:"joinDate"`
	Address          string   `mapstructure:"address"`
	EmergencyContact string   `mapstructure:"emergencyContact"`
	Active           *bool    `mapstructure:"active"`
	IsActive         *bool    `mapstructure:"isActive"`
}

func decodeEmployee(fields map[string]any) (Employee, error) {
	var w employeeWire
	if err := decodeWire(fields, &w); err != nil {
		return Employee{}, err
	}
	return Employee{
		ID:               recordID(fields["id"]),
		Name:             w.Name,
		Email:            w.Email,
		Phone:            w.Phone,
		Position:         w.Position,
		Department:       w.Department,
		Salary:           w.Salary,
		JoinDate:         w.JoinDate,
		Address:          w.Address,
		EmergencyContact: w.EmergencyContact,
		Active:           notFalse(w.Active, w.IsActive),
	}, nil
}

func validateEmployee(fields Fields, updating bool) error {
	v := validation.NewValidator()
	if !updating {
		if err := v.ValidateRequiredFields(fields, map[string]string{"name": "name", "email": "email"}); err != nil {
			return err
		}
	}
	if email, ok := fields["email"].(string); ok {
		return v.ValidateEmail(email)
	}
	return nil
}

// EmployeeDefinition описание ресурса сотрудников
func EmployeeDefinition() Definition[Employee] {
	return Definition[Employee]{
		Name:     "employee",
		ListKeys: []string{"employees"},
		Decode:   decodeEmployee,
		Validate: validateEmployee,
		Flags: []Flag[Employee]{
			{
				Name:   "active",
				Policy: ServerConfirmed,
				Get:    func(e Employee) bool { return e.Active },
				Set:    func(e Employee, v bool) Employee { e.Active = v; return e },
				Confirm: func(_ Employee, next bool) confirm.Prompt {
					if next {
						return confirm.Prompt{
							Title:       "Activate Employee",
							Message:     "This will mark the employee as active.",
							ConfirmText: "Activate",
							Kind:        "warning",
						}
					}
					return confirm.Prompt{
						Title:       "Deactivate Employee",
						Message:     "This will mark the employee as inactive.",
						ConfirmText: "Deactivate",
						Kind:        "warning",
					}
				},
				Payload:         func(_ Employee, next bool) Fields { return Fields{"active": next} },
				EnabledMessage:  "Employee activated",
				DisabledMessage: "Employee deactivated",
				FailureMessage:  "Failed to update employee status",
			},
		},
		DeletePrompt: func(Employee) confirm.Prompt { return deletePrompt("Delete Employee", "employee") },
		Messages: Messages{
			LoadFailed:   "Failed to load employees",
			Created:      "Employee created successfully",
			CreateFailed: "Failed to save employee",
			Updated:      "Employee updated successfully",
			UpdateFailed: "Failed to save employee",
			Deleted:      "Employee deleted successfully",
			DeleteFailed: "Failed to delete employee",
		},
	}
}

// NewEmployees создает контроллер сотрудников
func NewEmployees(api client.Dispatcher, gate confirm.Requester, notifier notify.Notifier, log logger.Logger) *Controller[Employee] {
	backend := NewRemoteBackend(api, Operations{
		List:   client.OpEmployeeList,
		Create: client.OpEmployeeCreate,
		Update: client.OpEmployeeUpdate,
		Delete: client.OpEmployeeDelete,
	})
	return NewController(EmployeeDefinition(), backend, gate, notifier, log)
}
