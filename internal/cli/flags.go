package cli

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

// nullDecimalFlag is a pflag.Value that stays null until the flag is given.
type nullDecimalFlag struct {
	value decimal.NullDecimal
}

var _ pflag.Value = (*nullDecimalFlag)(nil)

func (f *nullDecimalFlag) String() string {
	if !f.value.Valid {
		return ""
	}
	return f.value.Decimal.String()
}

func (f *nullDecimalFlag) Set(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	f.value = decimal.NewNullDecimal(d)
	return nil
}

func (f *nullDecimalFlag) Type() string {
	return "decimal"
}

// optionalIntFlag is a pflag.Value for flags where zero and absent differ.
type optionalIntFlag struct {
	value *int
}

var _ pflag.Value = (*optionalIntFlag)(nil)

func (f *optionalIntFlag) String() string {
	if f.value == nil {
		return ""
	}
	return strconv.Itoa(*f.value)
}

func (f *optionalIntFlag) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	f.value = &v
	return nil
}

func (f *optionalIntFlag) Type() string {
	return "int"
}
