// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/staydesk/internal/app/store/audit"
	"github.com/dalemusser/staydesk/internal/app/system/paging"
	"github.com/dalemusser/staydesk/internal/app/system/viewdata"
)

// listItem represents a single audit event row for display.
type listItem struct {
	ID        string
	Timestamp time.Time
	Category  string
	EventType string
	ActorID   int
	UserID    int
	IP        string
	Success   bool
	Reason    string
	Details   map[string]string
}

// listData is the view model for the audit log list page.
type listData struct {
	viewdata.BaseVM

	Items []listItem

	// Filters
	Category  string
	EventType string
	StartDate string
	EndDate   string

	// Filter options
	Categories []categoryOption
	EventTypes []string

	// Failed sign-ins in the last FailedLoginWindow, newest first.
	FailedLogins []listItem

	Pager    paging.Pager
	BasePath string
	Error    string
}

// categoryOption represents a category for the filter dropdown.
type categoryOption struct {
	Value string
	Label string
}

// allCategories returns the available categories for filtering.
func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication"},
		{Value: audit.CategoryAdmin, Label: "Administration"},
	}
}

// EventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func EventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailed,
		audit.EventLoginFailedRateLimit,
		audit.EventLogout,
		audit.EventSessionExpired,
		audit.EventRegistered,
		audit.EventRegisterFailed,
		audit.EventProfileUpdated,
	}

	adminEvents := []string{
		audit.EventUserDeleted,
		audit.EventRoomDeleted,
		audit.EventLocationDeleted,
		audit.EventBookingDeleted,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents))
		all = append(all, authEvents...)
		all = append(all, adminEvents...)
		return all
	default:
		return nil
	}
}
