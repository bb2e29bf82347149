package sampledata

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/okian/kiosk-analytics/internal/domain/model"
)

// Config describes the tree to generate.
type Config struct {
	Dir       string     `validate:"required"`
	Kiosks    int        `validate:"gte=1,lte=9999"`
	Days      int        `validate:"gte=1"`
	Rows      int        `validate:"gte=0"`
	Start     civil.Date `validate:"-"`
	Malformed float64    `validate:"gte=0,lte=1"`
	SkipRate  float64    `validate:"gte=0,lt=1"`
	Seed      uint64
	Workers   int `validate:"gte=0"`
}

// DefaultConfig generates two weeks of data for three kiosks.
func DefaultConfig() Config {
	return Config{
		Dir:       "./data",
		Kiosks:    3,
		Days:      14,
		Rows:      200,
		Start:     civil.DateOf(time.Now()).AddDays(-13),
		Malformed: 0.02,
		SkipRate:  0.1,
	}
}

// Validate checks value ranges and that Start is a real date.
func (c Config) Validate() error {
	var problems []string
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				problems = append(problems, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}
	switch {
	case !c.Start.IsValid():
		problems = append(problems, fmt.Sprintf("Start %q is not a calendar date", c.Start))
	case !model.InCentury(c.Start) || !model.InCentury(c.Start.AddDays(max(c.Days-1, 0))):
		problems = append(problems, fmt.Sprintf("dates from %s over %d day(s) leave 2000-2099", c.Start, c.Days))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
