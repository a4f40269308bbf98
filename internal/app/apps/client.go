package apps

import (
	"context"
	"time"

	"github.com/suve19/np-assignment1b/internal"
	"github.com/suve19/np-assignment1b/internal/pkg/client"
	"github.com/suve19/np-assignment1b/internal/pkg/validate"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// ClientAppCfg configures a ClientApp.
type ClientAppCfg interface {
	ApplyClientApp(*ClientApp) error
}

// ClientApp is the calc client application.
type ClientApp struct {
	Addr     string        `validate:"required,hostport"`
	Timeout  time.Duration `validate:"gt=0"`
	Attempts int           `validate:"min=1"`
}

// NewClientApp creates a new ClientApp.
func NewClientApp(cfgs ...ClientAppCfg) (*ClientApp, error) {
	app := &ClientApp{
		Timeout:  time.Duration(internal.ClientTimeoutMS) * time.Millisecond,
		Attempts: internal.ClientAttempts,
	}
	for _, cfg := range cfgs {
		if err := cfg.ApplyClientApp(app); err != nil {
			return nil, errors.Wrap(err, "apply ClientApp cfg failed")
		}
	}
	if err := validate.Validate().Struct(app); err != nil {
		return nil, errors.Wrap(err, "validate ClientApp failed")
	}
	return app, nil
}

// Run performs one exchange with the server. A NOT_OK verdict is reported as ErrVerdictNotOK.
func (app *ClientApp) Run(ctx context.Context, _ []string) error {
	c, err := client.NewClient(
		client.WithServerAddr(app.Addr),
		client.WithTimeout(app.Timeout),
		client.WithAttempts(app.Attempts),
	)
	if err != nil {
		return errors.Wrap(err, "create client failed")
	}
	if err := c.Connect(ctx); err != nil {
		return errors.Wrap(err, "connect client failed")
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.WithError(err).Warn("close client failed")
		}
	}()
	res, err := c.Run(ctx)
	if err != nil {
		return errors.Wrap(err, "run client failed")
	}
	fields := logrus.Fields{
		"uuid":  res.RunID.String(),
		"id":    res.ID,
		"arith": res.Op.String(),
	}
	if !res.OK() {
		logger.WithFields(fields).Warn("server verdict: NOT OK")
		return ErrVerdictNotOK
	}
	logger.WithFields(fields).Info("server verdict: OK")
	return nil
}
