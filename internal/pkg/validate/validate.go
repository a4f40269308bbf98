// Package validate holds the shared struct validator.
package validate

import (
	"net"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	once sync.Once
	v    *validator.Validate
)

// Validate returns the process-wide validator instance.
//
// Besides the built-in tags it understands "hostport": a host (name, IPv4 or
// bracketed IPv6) and a port in 0-65535, where port 0 asks the OS for one.
func Validate() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		mustRegister(v, "hostport", hostPort)
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(errors.Wrapf(err, "register %q validation failed", tag))
	}
}

func hostPort(fl validator.FieldLevel) bool {
	_, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil {
		return false
	}
	_, err = strconv.ParseUint(port, 10, 16)
	return err == nil
}
