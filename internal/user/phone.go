package user

import (
	"github.com/ttacon/libphonenumber"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
)

// NormalizePhone validates raw against region and returns it in E.164 form.
func NormalizePhone(raw, region string) (string, error) {
	num, err := libphonenumber.Parse(raw, region)
	if err != nil {
		return "", apperr.Invalid("phone", raw, "not a phone number")
	}

	if !libphonenumber.IsValidNumber(num) {
		return "", apperr.Invalid("phone", raw, "not a valid number for region %s", region)
	}

	return libphonenumber.Format(num, libphonenumber.E164), nil
}
