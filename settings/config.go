package settings

import "time"

// Config is the file/env shape of Settings. Toggles are pointers so that an
// absent key keeps its default instead of becoming false.
type Config struct {
	SecretKey  string        `yaml:"secret_key" mapstructure:"secret_key"`
	Algorithm  string        `yaml:"algorithm" mapstructure:"algorithm"`
	AccessTTL  time.Duration `yaml:"access_ttl" mapstructure:"access_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" mapstructure:"refresh_ttl"`
	Issuer     string        `yaml:"issuer" mapstructure:"issuer"`

	AcceptHeader     *bool `yaml:"accept_header" mapstructure:"accept_header"`
	AcceptCookie     *bool `yaml:"accept_cookie" mapstructure:"accept_cookie"`
	SetCookieOnLogin *bool `yaml:"set_cookie_on_login" mapstructure:"set_cookie_on_login"`

	CookieNameAccess    string `yaml:"cookie_name_access" mapstructure:"cookie_name_access"`
	CookieNameRefresh   string `yaml:"cookie_name_refresh" mapstructure:"cookie_name_refresh"`
	CookieMaxAgeAccess  *int   `yaml:"cookie_max_age_access" mapstructure:"cookie_max_age_access"`
	CookieMaxAgeRefresh *int   `yaml:"cookie_max_age_refresh" mapstructure:"cookie_max_age_refresh"`
	CookieSecure        *bool  `yaml:"cookie_secure" mapstructure:"cookie_secure"`
	CookieSameSite      string `yaml:"cookie_samesite" mapstructure:"cookie_samesite"`
	CookiePath          string `yaml:"cookie_path" mapstructure:"cookie_path"`
	CookieDomain        string `yaml:"cookie_domain" mapstructure:"cookie_domain"`

	IssueTokensOnRegister *bool `yaml:"issue_tokens_on_register" mapstructure:"issue_tokens_on_register"`
	RevokeOnRotation      *bool `yaml:"revoke_on_rotation" mapstructure:"revoke_on_rotation"`
	RefreshRotation       *bool `yaml:"refresh_rotation" mapstructure:"refresh_rotation"`
}

// Settings converts the loaded config into validated Settings.
func (c Config) Settings() (Settings, error) {
	s := Default()
	s.SecretKey = c.SecretKey
	s.Issuer = c.Issuer
	s.CookieDomain = c.CookieDomain
	if c.Algorithm != "" {
		s.Algorithm = Algorithm(c.Algorithm)
	}
	if c.AccessTTL != 0 {
		s.AccessTTL = c.AccessTTL
	}
	if c.RefreshTTL != 0 {
		s.RefreshTTL = c.RefreshTTL
	}
	if c.CookieNameAccess != "" {
		s.CookieNameAccess = c.CookieNameAccess
	}
	if c.CookieNameRefresh != "" {
		s.CookieNameRefresh = c.CookieNameRefresh
	}
	if c.CookieSameSite != "" {
		s.CookieSameSite = SameSite(c.CookieSameSite)
	}
	if c.CookiePath != "" {
		s.CookiePath = c.CookiePath
	}
	setBool(&s.AcceptHeader, c.AcceptHeader)
	setBool(&s.AcceptCookie, c.AcceptCookie)
	setBool(&s.SetCookieOnLogin, c.SetCookieOnLogin)
	setBool(&s.CookieSecure, c.CookieSecure)
	setBool(&s.IssueTokensOnRegister, c.IssueTokensOnRegister)
	setBool(&s.RevokeOnRotation, c.RevokeOnRotation)
	setBool(&s.RefreshRotation, c.RefreshRotation)
	if c.CookieMaxAgeAccess != nil {
		s.CookieMaxAgeAccess = *c.CookieMaxAgeAccess
	}
	if c.CookieMaxAgeRefresh != nil {
		s.CookieMaxAgeRefresh = *c.CookieMaxAgeRefresh
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
