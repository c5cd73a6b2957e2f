package server

import "fmt"

func errInvalidEvictionRatio(field string, value float64) error {
	return fmt.Errorf("%s must be in [0,1], got %v", field, value)
}
