package app

import (
	"github.com/shandysiswandi/easymed/internal/auth"
	"github.com/shandysiswandi/easymed/internal/notification"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.auth.enabled") {
		if _, err := auth.New(a.ctx, auth.Dependency{
			CacheConn:  a.cacheConn,
			Goroutine:  a.goroutine,
			Enforcer:   a.casbin,
			Router:     a.router,
			Messaging:  a.messaging,
			Storage:    a.storage,
			Locker:     a.locker,
			SMS:        a.sms,
			HealthID:   a.healthID,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			HMAC:       a.hmac,
			AdminHash:  a.adminHash,
			Clock:      a.clock,
			OTP:        a.otp,
			Validator:  a.validator,
			JWT:        a.jwt,
			Encryptor:  a.encryptor,
		}); err != nil {
			fatal("init module auth", err)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if _, err := notification.New(a.ctx, notification.Dependency{
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			Clock:      a.clock,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
			Router:     a.router,
			Mail:       a.mail,
			SMS:        a.sms,
			Enforcer:   a.casbin,
		}); err != nil {
			fatal("init module notification", err)
		}
	}
}
