package services

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go_mock_interceptor/internal/domain/iface"
	model "go_mock_interceptor/internal/domain/model/mock_rule"
	configs "go_mock_interceptor/internal/infra/config"
	"go_mock_interceptor/utils"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
)

// Interceptor is invoked by the host loading layer for every request. It
// claims requests the registry handles and drives their delivery.
type Interceptor struct {
	match iface.RuleMatchService
	pool  *ants.Pool
}

func NewInterceptor(match iface.RuleMatchService, c *configs.MockerConfig) (*Interceptor, error) {
	size := c.Delivery.PoolSize
	if size <= 0 {
		size = configs.DefaultPoolSize
	}
	pool, err := ants.NewPool(size, ants.WithPanicHandler(func(p interface{}) {
		utils.GetLogger().WithFields(logrus.Fields{
			"panic": p,
			"stack": string(debug.Stack()),
		}).Error("delivery panic")
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery pool: %w", err)
	}

	return &Interceptor{
		match: match,
		pool:  pool,
	}, nil
}

// CanInit reports whether the interceptor claims req.
func (i *Interceptor) CanInit(req *http.Request) bool {
	return i.match.CanHandle(model.NewHTTPRequest(req))
}

// RulesVersion reports the rule set version responses may be cached under.
// The second result is false when no response may be reused.
func (i *Interceptor) RulesVersion() (uint64, bool) {
	return i.match.RulesVersion()
}

// CanonicalRequest returns req unchanged.
func (i *Interceptor) CanonicalRequest(req *http.Request) *http.Request {
	return req
}

// NewSession prepares the delivery of req to client. Nothing happens until
// Start is called.
func (i *Interceptor) NewSession(req *http.Request, client iface.Client) *Session {
	id := uuid.NewString()
	return &Session{
		id:          id,
		interceptor: i,
		req:         req,
		info:        model.NewHTTPRequest(req),
		client:      client,
		done:        make(chan struct{}),
		log: utils.GetLogger().WithFields(logrus.Fields{
			"session": id,
			"method":  req.Method,
			"url":     req.URL.String(),
		}),
	}
}

// submit runs task on the delivery pool, or inline when the pool refuses it.
func (i *Interceptor) submit(task func()) {
	if err := i.pool.Submit(task); err != nil {
		utils.GetLogger().Warnf("delivery pool rejected task, running inline: %v", err)
		task()
	}
}

// Close releases the delivery pool. Pending delayed deliveries run inline.
func (i *Interceptor) Close() {
	i.pool.Release()
}
