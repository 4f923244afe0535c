package models

// WeatherCondition описание погодных условий.
type WeatherCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// ForecastMain температурный блок трёхчасового прогноза.
type ForecastMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

// ForecastEntry одна точка прогноза с шагом 3 часа.
type ForecastEntry struct {
	Dt      int64              `json:"dt"`
	Main    ForecastMain       `json:"main"`
	Weather []WeatherCondition `json:"weather"`
	Clouds  struct {
		All int `json:"all"`
	} `json:"clouds"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Visibility int     `json:"visibility"`
	Pop        float64 `json:"pop"`
	DtTxt      string  `json:"dt_txt"`
}

// City информация о городе из ответа прогноза.
type City struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Country  string `json:"country"`
	Timezone int    `json:"timezone"`
	Sunrise  int64  `json:"sunrise"`
	Sunset   int64  `json:"sunset"`
}

// CurrentWeather текущие условия, взятые из первой точки прогноза.
type CurrentWeather struct {
	Temp       float64            `json:"temp"`
	FeelsLike  float64            `json:"feels_like"`
	Humidity   int                `json:"humidity"`
	Pressure   int                `json:"pressure"`
	WindSpeed  float64            `json:"wind_speed"`
	WindDeg    int                `json:"wind_deg"`
	Clouds     int                `json:"clouds"`
	Visibility int                `json:"visibility"`
	Weather    []WeatherCondition `json:"weather"`
}

// Forecast ответ погодного эндпоинта.
type Forecast struct {
	Current CurrentWeather  `json:"current"`
	List    []ForecastEntry `json:"list"`
	City    City            `json:"city"`
}

// GeoLocation результат геокодирования.
type GeoLocation struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Country   string  `json:"country"`
	State     string  `json:"state,omitempty"`
}

// Insight персональная рекомендация по погоде.
type Insight struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Icon        string `json:"icon"`
}
