package models

// Preferences пользовательские настройки отображения погоды.
type Preferences struct {
	Location             string  `json:"location"`
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	TempUnit             string  `json:"tempUnit"`
	WindUnit             string  `json:"windUnit"`
	NotificationsEnabled bool    `json:"notificationsEnabled"`
	DarkMode             bool    `json:"darkMode"`
	Theme                string  `json:"theme"`
}

// DefaultPreferences настройки нового пользователя.
func DefaultPreferences() Preferences {
	return Preferences{
		Location:             "New York, USA",
		Latitude:             40.7128,
		Longitude:            -74.006,
		TempUnit:             "C",
		WindUnit:             "ms",
		NotificationsEnabled: true,
		DarkMode:             true,
		Theme:                "dark",
	}
}

// PreferencesPatch частичное обновление настроек.
type PreferencesPatch struct {
	Location             *string  `json:"location,omitempty" validate:"omitempty,min=1,max=200"`
	Latitude             *float64 `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude            *float64 `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	TempUnit             *string  `json:"tempUnit,omitempty" validate:"omitempty,oneof=C F"`
	WindUnit             *string  `json:"windUnit,omitempty" validate:"omitempty,oneof=ms kmh mph"`
	NotificationsEnabled *bool    `json:"notificationsEnabled,omitempty"`
	DarkMode             *bool    `json:"darkMode,omitempty"`
	Theme                *string  `json:"theme,omitempty" validate:"omitempty,oneof=auto dark light"`
}

// Apply возвращает копию настроек с применёнными изменениями.
func (p Preferences) Apply(patch PreferencesPatch) Preferences {
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.Latitude != nil {
		p.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		p.Longitude = *patch.Longitude
	}
	if patch.TempUnit != nil {
		p.TempUnit = *patch.TempUnit
	}
	if patch.WindUnit != nil {
		p.WindUnit = *patch.WindUnit
	}
	if patch.NotificationsEnabled != nil {
		p.NotificationsEnabled = *patch.NotificationsEnabled
	}
	if patch.DarkMode != nil {
		p.DarkMode = *patch.DarkMode
	}
	if patch.Theme != nil {
		p.Theme = *patch.Theme
	}
	return p
}
