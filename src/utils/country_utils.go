package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/username/capgains/backend/src/logger"
)

type CountryInfo struct {
	Country string `json:"country"`
	Alpha2  string `json:"alpha2"`
	Alpha3  string `json:"alpha3"`
	Numeric string `json:"numeric"`
}

var (
	countryMap map[string]CountryInfo
	loadOnce   sync.Once
	loadError  error
	dataLoaded bool
)

// InitCountryData loads the ISIN-prefix country table from the given file.
// Call once from main.go after config is loaded.
func InitCountryData(filePath string) error {
	loadOnce.Do(func() {
		fileData, err := os.ReadFile(filePath)
		if err != nil {
			loadError = fmt.Errorf("failed to read country data file '%s': %w", filePath, err)
			return
		}

		var countries []CountryInfo
		if err := json.Unmarshal(fileData, &countries); err != nil {
			loadError = fmt.Errorf("failed to unmarshal country data from '%s': %w", filePath, err)
			return
		}

		countryMap = make(map[string]CountryInfo)
		for _, country := range countries {
			countryMap[strings.ToUpper(country.Alpha2)] = country
		}
		dataLoaded = true
		if logger.L != nil {
			logger.L.Info("Country data loaded", "path", filePath, "countryCount", len(countryMap))
		}
	})
	return loadError
}

// GetCountryCodeString maps an ISIN's two-letter prefix to "numeric - name",
// the country field reported per gain line. The first two characters of an
// ISIN are the issuing country's ISO 3166-1 alpha-2 code.
func GetCountryCodeString(isin string) string {
	if !dataLoaded {
		return "Country Data Not Initialized"
	}
	if len(isin) < 2 {
		return "Invalid ISIN (Too Short)"
	}

	alpha2Code := strings.ToUpper(isin[:2])
	countryInfo, found := countryMap[alpha2Code]
	if !found {
		return "Unknown Code: " + alpha2Code
	}

	numericCode := strings.TrimSpace(countryInfo.Numeric)
	if numericCode == "" {
		numericCode = "N/A"
	}
	return fmt.Sprintf("%s - %s", numericCode, countryInfo.Country)
}
