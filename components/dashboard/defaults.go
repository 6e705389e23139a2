package dashboard

const (
	// DefaultLayoutID is the layout restored by ResetToDefault.
	DefaultLayoutID = "grid-3"
	// DefaultThemeID is the theme restored by ResetToDefault.
	DefaultThemeID = "blue"
)

var defaultLayouts = []LayoutTemplate{
	{ID: "grid-1", Name: "1 Column", Columns: 1, GridClass: "dashboard-grid-1"},
	{ID: "grid-2", Name: "2 Columns", Columns: 2, GridClass: "dashboard-grid-2"},
	{ID: "grid-3", Name: "3 Columns", Columns: 3, GridClass: "dashboard-grid-3"},
	{ID: "grid-4", Name: "4 Columns", Columns: 4, GridClass: "dashboard-grid-4"},
	{ID: "grid-mixed", Name: "Mixed", Columns: 2, GridClass: "dashboard-grid-mixed"},
}

var defaultThemes = []ColorTheme{
	{ID: "blue", Name: "Blue", Primary: "#2563eb"},
	{ID: "green", Name: "Green", Primary: "#059669"},
	{ID: "purple", Name: "Purple", Primary: "#7c3aed"},
	{ID: "red", Name: "Red", Primary: "#dc2626"},
	{ID: "orange", Name: "Orange", Primary: "#ea580c"},
	{ID: "teal", Name: "Teal", Primary: "#0d9488"},
}

var defaultWidgets = []Widget{
	{
		ID:          "system-health",
		Title:       "System Health",
		Description: "Server status and performance",
		Icon:        "⚡",
		Color:       "#059669",
		Category:    "admin",
		Size:        SizeMedium,
	},
	{
		ID:          "revenue-chart",
		Title:       "Revenue Chart",
		Description: "Sales and revenue analytics",
		Icon:        "📊",
		Color:       "#2563eb",
		Category:    "admin",
		Size:        SizeLarge,
	},
	{
		ID:    "recent-activity",
		Title: "Recent Activity",
		TitleLocalized: map[string]string{
			"es": "Actividad reciente",
		},
		Description: "Latest user activities",
		Icon:        "🕐",
		Color:       "#7c3aed",
		Category:    CategoryAll,
		Size:        SizeMedium,
	},
	{
		ID:    "ticket-alerts",
		Title: "Price Alerts",
		TitleLocalized: map[string]string{
			"es": "Alertas de precio",
		},
		Description: "Active price monitoring alerts",
		Icon:        "🔔",
		Color:       "#dc2626",
		Category:    "customer",
		Size:        SizeSmall,
	},
	{
		ID:          "purchase-queue",
		Title:       "Purchase Queue",
		Description: "Pending ticket purchases",
		Icon:        "🛒",
		Color:       "#ea580c",
		Category:    "agent",
		Size:        SizeMedium,
	},
	{
		ID:          "favorite-teams",
		Title:       "Favorite Teams",
		Description: "Your followed teams",
		Icon:        "❤️",
		Color:       "#ec4899",
		Category:    "customer",
		Size:        SizeSmall,
	},
	{
		ID:          "analytics-overview",
		Title:       "Analytics Overview",
		Description: "Key performance metrics",
		Icon:        "📈",
		Color:       "#0d9488",
		Category:    "admin",
		Size:        SizeLarge,
	},
	{
		ID:          "support-tickets",
		Title:       "Support Tickets",
		Description: "Customer support queue",
		Icon:        "🎫",
		Color:       "#7c2d12",
		Category:    "agent",
		Size:        SizeMedium,
	},
}

// DefaultLayouts returns the built-in grid templates.
func DefaultLayouts() []LayoutTemplate {
	return append([]LayoutTemplate(nil), defaultLayouts...)
}

// DefaultThemes returns the built-in color themes.
func DefaultThemes() []ColorTheme {
	return append([]ColorTheme(nil), defaultThemes...)
}

// DefaultWidgets returns the built-in widget catalog.
func DefaultWidgets() []Widget {
	out := make([]Widget, len(defaultWidgets))
	for i, w := range defaultWidgets {
		out[i] = w.clone()
	}
	return out
}

// FilterByRole keeps widgets whose category is "all" or matches role. An
// empty role keeps everything.
func FilterByRole(widgets []Widget, role string) []Widget {
	if role == "" {
		return append([]Widget(nil), widgets...)
	}
	out := make([]Widget, 0, len(widgets))
	for _, w := range widgets {
		if w.Category == CategoryAll || w.Category == role {
			out = append(out, w)
		}
	}
	return out
}

func (w Widget) clone() Widget {
	if w.TitleLocalized != nil {
		localized := make(map[string]string, len(w.TitleLocalized))
		for k, v := range w.TitleLocalized {
			localized[k] = v
		}
		w.TitleLocalized = localized
	}
	return w
}
