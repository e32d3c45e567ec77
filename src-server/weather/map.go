package weather

import (
	"strings"
	"time"
)

const apiTimeLayout = "2006-01-02 15:04"

type apiCondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

type apiHour struct {
	Time      string       `json:"time"`
	TempC     float64      `json:"temp_c"`
	Condition apiCondition `json:"condition"`
}

type apiResponse struct {
	Location struct {
		Name      string  `json:"name"`
		Region    string  `json:"region"`
		Country   string  `json:"country"`
		Lat       float64 `json:"lat"`
		Lon       float64 `json:"lon"`
		TzID      string  `json:"tz_id"`
		Localtime string  `json:"localtime"`
	} `json:"location"`
	Current struct {
		LastUpdated string       `json:"last_updated"`
		TempC       float64      `json:"temp_c"`
		FeelslikeC  float64      `json:"feelslike_c"`
		WindKph     float64      `json:"wind_kph"`
		GustKph     float64      `json:"gust_kph"`
		WindDegree  int          `json:"wind_degree"`
		WindDir     string       `json:"wind_dir"`
		Condition   apiCondition `json:"condition"`
	} `json:"current"`
	Forecast struct {
		Forecastday []struct {
			Day struct {
				MaxtempC float64 `json:"maxtemp_c"`
				MintempC float64 `json:"mintemp_c"`
			} `json:"day"`
			Hour []apiHour `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// normalizeIcon turns the protocol-relative icon URLs the API returns
// into absolute https URLs.
func normalizeIcon(icon string) string {
	if strings.HasPrefix(icon, "//") {
		return "https:" + icon
	}
	return icon
}

func kphToMS(kph float64) float64 {
	return kph / 3.6
}

// mapPayload flattens the API response into the dashboard payload. The
// hourly window starts at the next full hour after now and spans both
// forecast days, so it never runs short around midnight.
func mapPayload(raw apiResponse, now time.Time) Payload {
	p := Payload{
		Location: Location{
			Name:      raw.Location.Name,
			Region:    raw.Location.Region,
			Country:   raw.Location.Country,
			Lat:       raw.Location.Lat,
			Lon:       raw.Location.Lon,
			TzID:      raw.Location.TzID,
			Localtime: raw.Location.Localtime,
		},
		Current: Current{
			Temp:          raw.Current.TempC,
			TempFeelsLike: raw.Current.FeelslikeC,
			WindSpeedMS:   kphToMS(raw.Current.WindKph),
			WindSpeed:     kphToMS(raw.Current.WindKph),
			WindKph:       raw.Current.WindKph,
			GustKph:       raw.Current.GustKph,
			GustMS:        kphToMS(raw.Current.GustKph),
			WindDeg:       raw.Current.WindDegree,
			WindDir:       raw.Current.WindDir,
			Sky:           raw.Current.Condition.Text,
			WeatherIcon:   normalizeIcon(raw.Current.Condition.Icon),
			Timestamp:     raw.Current.LastUpdated,
		},
	}

	if len(raw.Forecast.Forecastday) > 0 {
		p.Today = HiLo{
			HighC: raw.Forecast.Forecastday[0].Day.MaxtempC,
			LowC:  raw.Forecast.Forecastday[0].Day.MintempC,
		}
	}

	cutoff := now.Truncate(time.Hour)
	for _, day := range raw.Forecast.Forecastday {
		for _, hour := range day.Hour {
			t, err := time.ParseInLocation(apiTimeLayout, hour.Time, now.Location())
			if err != nil || !t.After(cutoff) {
				continue
			}
			p.Next12 = append(p.Next12, Hour{
				Time:        hour.Time,
				TempC:       hour.TempC,
				Sky:         hour.Condition.Text,
				WeatherIcon: normalizeIcon(hour.Condition.Icon),
			})
			if len(p.Next12) == 12 {
				return p
			}
		}
	}
	return p
}
