package warning

import (
	"testing"

	"cityboard/src-server/apperr"
)

func TestDistrictKey(t *testing.T) {
	key, err := DistrictKey("057740032032")
	if err != nil {
		t.Fatalf("DistrictKey() error: %s", err)
	}
	if want := "057740000000"; key != want {
		t.Errorf("DistrictKey() = %q, want %q", key, want)
	}
}

func TestDistrictKeyTooShort(t *testing.T) {
	if _, err := DistrictKey("057"); !apperr.IsValidation(err) {
		t.Errorf("DistrictKey(\"057\") error = %v, want validation error", err)
	}
}
