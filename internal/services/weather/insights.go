package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/magabrotheeeer/astraweather/internal/models"
)

// Виды активности пользователя.
const (
	ActivityCommute = "commute"
	ActivityOutdoor = "outdoor"
	ActivitySports  = "sports"
	ActivityTravel  = "travel"
	ActivityIndoor  = "indoor"
)

const maxInsights = 6

// ErrUnknownActivity неизвестный вид активности.
var ErrUnknownActivity = errors.New("unknown activity")

// NormalizeActivity возвращает вид активности или commute для пустого значения.
func NormalizeActivity(activity string) (string, error) {
	activity = strings.ToLower(strings.TrimSpace(activity))
	switch activity {
	case "":
		return ActivityCommute, nil
	case ActivityCommute, ActivityOutdoor, ActivitySports, ActivityTravel, ActivityIndoor:
		return activity, nil
	}
	return "", ErrUnknownActivity
}

// Insights строит рекомендации по прогнозу для указанной активности.
func (s *WeatherService) Insights(ctx context.Context, lat, lon float64, activity string) ([]models.Insight, error) {
	const op = "services.WeatherService.Insights"
	activity, err := NormalizeActivity(activity)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	forecast, err := s.Forecast(ctx, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return BuildInsights(forecast, activity, s.now()), nil
}

// BuildInsights применяет правила к прогнозу. Результат не длиннее шести элементов.
func BuildInsights(f *models.Forecast, activity string, now time.Time) []models.Insight {
	insights := make([]models.Insight, 0, maxInsights)
	if len(f.List) == 0 {
		return insights
	}
	cur := f.Current
	visibilityKm := float64(cur.Visibility) / 1000
	daily := Daily(f.List, f.City.Timezone)
	condition := ""
	if len(cur.Weather) > 0 {
		condition = cur.Weather[0].Main
	}

	// Профиль по умолчанию ездит ежедневно, поэтому поездки оцениваются всегда.
	var warnings []string
	if cur.WindSpeed >= 30 {
		warnings = append(warnings, fmt.Sprintf("high winds (%.1f m/s)", cur.WindSpeed))
	}
	if visibilityKm <= 5 {
		warnings = append(warnings, "low visibility")
	}
	if cur.Temp <= -5 || cur.Temp >= 35 {
		warnings = append(warnings, "extreme temperature")
	}
	if len(warnings) == 0 {
		insights = append(insights, models.Insight{
			Type:        "recommendation",
			Title:       "Ideal Commute Weather",
			Description: "Excellent conditions for your commute. Safe driving and comfortable travel.",
			Priority:    "low",
			Icon:        "activity",
		})
	} else {
		insights = append(insights, models.Insight{
			Type:        "warning",
			Title:       "Commute Alert",
			Description: fmt.Sprintf("Be cautious: %s. Allow extra travel time.", strings.Join(warnings, ", ")),
			Priority:    "high",
			Icon:        "wind",
		})
	}

	if activity == ActivitySports || activity == ActivityOutdoor {
		if cur.Humidity < 70 && cur.WindSpeed < 20 {
			insights = append(insights, models.Insight{
				Type:        "recommendation",
				Title:       "Perfect for Outdoor Activities",
				Description: fmt.Sprintf("%s today. Great day for sports, cycling, or hiking.", condition),
				Priority:    "low",
				Icon:        "activity",
			})
		}
		if len(daily) > 1 && daily[1].Precipitation > 60 {
			insights = append(insights, models.Insight{
				Type:  "warning",
				Title: "Rain Expected Tomorrow",
				Description: fmt.Sprintf("%d%% chance of precipitation. Plan indoor activities or postpone outdoor sports.",
					daily[1].Precipitation),
				Priority: "medium",
				Icon:     "cloud-rain",
			})
		}
	}

	if len(daily) >= 3 && math.Abs(daily[2].TempMax-daily[0].TempMax) > 8 {
		direction := "cooling down"
		if daily[2].TempMax > daily[0].TempMax {
			direction = "warming up"
		}
		insights = append(insights, models.Insight{
			Type:  "trend",
			Title: "Temperature " + direction,
			Description: fmt.Sprintf("%s%s significantly over the next 3 days. Adjust your wardrobe accordingly.",
				strings.ToUpper(direction[:1]), direction[1:]),
			Priority: "low",
			Icon:     "trending-up",
		})
	}

	if cur.Humidity > 85 {
		insights = append(insights, models.Insight{
			Type:        "warning",
			Title:       "High Humidity Alert",
			Description: "Extremely humid conditions. Stay hydrated and limit strenuous outdoor activity.",
			Priority:    "medium",
			Icon:        "droplets",
		})
	}

	if pollenSeason(now.Month()) && cur.WindSpeed > 20 {
		insights = append(insights, models.Insight{
			Type:        "warning",
			Title:       "High Pollen Count Alert",
			Description: "Windy conditions increase pollen spread. Take allergy medication if needed.",
			Priority:    "medium",
			Icon:        "wind",
		})
	}

	if f.City.Sunrise > 0 && strings.Contains(strings.ToLower(condition), "clear") {
		sunrise := time.Unix(f.City.Sunrise, 0)
		if d := now.Sub(sunrise); d > -time.Hour && d < time.Hour {
			local := sunrise.In(time.FixedZone("", f.City.Timezone))
			insights = append(insights, models.Insight{
				Type:  "recommendation",
				Title: "Beautiful Sunrise Coming",
				Description: fmt.Sprintf("Clear skies expected at sunrise (%s). Great for photography!",
					local.Format("15:04")),
				Priority: "low",
				Icon:     "sun",
			})
		}
	}

	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

func pollenSeason(m time.Month) bool {
	return (m >= time.March && m <= time.May) || (m >= time.September && m <= time.November)
}
