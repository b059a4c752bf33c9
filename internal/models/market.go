package models

// MarketInfo is static yard information loaded from config/config.toml.
// Printed bill documents (rendered outside this service) use it for headers.
type MarketInfo struct {
	Name         string   `json:"name"`
	LicenceNo    string   `json:"licence_no"`
	Address      string   `json:"address"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	OpeningHours string   `json:"opening_hours"`
	WorkingDays  []string `json:"working_days"`
}
