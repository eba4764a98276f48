package location

import (
	"encoding/json"
	"strings"

	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/validator"
)

// FlexibleID accepts both string and numeric JSON values, because
// trackers send employee ids as numbers while the mobile app sends
// strings.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexibleID(n.String())
	return nil
}

// IngestRequest is the wire body of POST /locations. Latitude and
// longitude are pointers so a missing field is distinguishable from 0.
type IngestRequest struct {
	EmployeeID FlexibleID `json:"employee_id"`
	JobNumber  FlexibleID `json:"job_number"`
	Latitude   *float64   `json:"latitude"`
	Longitude  *float64   `json:"longitude"`
	AccuracyM  *float64   `json:"accuracy_m,omitempty"`
	SpeedKmh   *float64   `json:"speed_kmh,omitempty"`
	RecordedAt *string    `json:"recorded_at,omitempty"`
	VehicleRef *string    `json:"vehicle_ref,omitempty"`
	Source     *string    `json:"source,omitempty"`
}

func (r *IngestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(string(r.EmployeeID)) && validator.IsEmpty(string(r.JobNumber)) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id or job_number is required",
		})
	}

	if r.Latitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude is required",
		})
	} else if !validator.IsValidLatitude(*r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude is required",
		})
	} else if !validator.IsValidLongitude(*r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if r.AccuracyM != nil && *r.AccuracyM < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "accuracy_m",
			Message: "accuracy_m must not be negative",
		})
	}

	if r.SpeedKmh != nil && *r.SpeedKmh < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "speed_kmh",
			Message: "speed_kmh must not be negative",
		})
	}

	if r.RecordedAt != nil && !validator.IsEmpty(*r.RecordedAt) {
		if _, valid := validator.IsValidDateTime(strings.TrimSpace(*r.RecordedAt)); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "recorded_at",
				Message: "recorded_at must be an ISO8601 timestamp",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// IngestResult is what the ingestor reports back to the handler.
type IngestResult struct {
	SampleID string
}

type SampleResponse struct {
	ID         string   `json:"id"`
	EmployeeID string   `json:"employee_id"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	AccuracyM  *float64 `json:"accuracy_m,omitempty"`
	SpeedKmh   *float64 `json:"speed_kmh,omitempty"`
	Source     string   `json:"source"`
	RecordedAt string   `json:"recorded_at"`
	ReceivedAt string   `json:"received_at"`
	VehicleRef *string  `json:"vehicle_ref,omitempty"`
}
