package service

import (
	"errors"

	"mindwell/internal/pkg"
	"mindwell/internal/repository/redis"
)

const (
	ScopeRegister = "register"
	ScopeReset    = "reset"
)

var scopeSubjects = map[string]string{
	ScopeRegister: "Sign-up verification",
	ScopeReset:    "Password reset",
}

type EmailService struct {
	emailCfg pkg.SMTPConfig
	rds      *redis.EmailRepository
}

func NewEmailService(cfg pkg.SMTPConfig) *EmailService {
	return &EmailService{emailCfg: cfg, rds: &redis.EmailRepository{}}
}

// SendCode 发送验证码。先写 pending，邮件发出后再转 confirmed，
// 发送失败清掉 pending，不会留下可被校验通过的半成品。
func (s *EmailService) SendCode(scope, email string) error {
	subject, ok := scopeSubjects[scope]
	if !ok {
		return errors.New("unknown scope")
	}

	code, err := pkg.RandDigits(6)
	if err != nil {
		return err
	}
	if err = s.rds.SetPending(scope, email, code); err != nil {
		return err
	}

	html := pkg.EmailCodeHTML(subject, code, redis.DefaultEmailCodeTTL)
	if err = pkg.SendEmail(s.emailCfg, email, subject, html); err != nil {
		_ = s.rds.DeletePending(scope, email)
		return err
	}

	if err = s.rds.ConfirmPending(scope, email); err != nil {
		_ = s.rds.DeletePending(scope, email)
		return err
	}
	return nil
}

// VerifyCode 校验验证码，命中后一次性删除
func (s *EmailService) VerifyCode(scope, email, code string) (bool, error) {
	val, err := s.rds.GetConfirmed(scope, email)
	if err != nil {
		// 不存在或已过期
		return false, err
	}
	if val != code {
		return false, nil
	}
	if err = s.rds.DeleteConfirmed(scope, email); err != nil {
		return false, err
	}
	return true, nil
}
