package validation

import "testing"

func TestValidTimeOfDay(t *testing.T) {
	valid := []string{"00:00", "09:05", "10:30", "19:59", "23:59"}
	for _, s := range valid {
		if !ValidTimeOfDay(s) {
			t.Errorf("ValidTimeOfDay(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "9:05", "24:00", "10:60", "10-30", "10:30:00", "aa:bb"}
	for _, s := range invalid {
		if ValidTimeOfDay(s) {
			t.Errorf("ValidTimeOfDay(%q) = true, want false", s)
		}
	}
}

func TestTimeOfDayTag(t *testing.T) {
	v := NewValidator()

	type req struct {
		StartTime string `validate:"required,timeofday"`
	}

	if err := v.ValidateStruct(req{StartTime: "10:30"}); err != nil {
		t.Fatalf("valid time rejected: %v", err)
	}
	err := v.ValidateStruct(req{StartTime: "25:00"})
	if err == nil {
		t.Fatal("invalid time accepted")
	}
	msgs := FormatValidationErrors(err)
	if msgs["starttime"] != "StartTime must be a HH:MM time" {
		t.Fatalf("message = %q", msgs["starttime"])
	}
}
