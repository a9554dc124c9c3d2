package conf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	configValidator = newConfigValidator()
	numberRegex     = regexp.MustCompile(`^\d+$`)
)

type Config struct {
	HTTPServConf HttpServConf `json:"httpServer" yaml:"httpServer" validate:"required"`
	DBConf       DbConf       `json:"dataBase" yaml:"dataBase" validate:"required"`
	DetailConf   DetailConf   `json:"detail" yaml:"detail"`
}

type HttpServConf struct {
	Host    string `json:"host" yaml:"host" validate:"required"`
	Port    string `json:"port" yaml:"port" validate:"required,is-number"`
	BaseURL string `json:"baseURL" yaml:"baseURL"`
}

// GetAddress возвращает строку host:port для запуска HTTP-сервера.
func (s *HttpServConf) GetAddress() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type DbConf struct {
	Host     string `json:"host" yaml:"host" validate:"required"`
	Port     string `json:"port" yaml:"port" validate:"required,is-number"`
	User     string `json:"user" yaml:"user" validate:"required"`
	Password string `json:"password" yaml:"password" validate:"required"`
	Name     string `json:"name" yaml:"name" validate:"required"`
}

// DetailConf настраивает сборку детальной карточки задачи.
type DetailConf struct {
	// JoinTimeout ограничивает ожидание всех четырёх загрузок; пустая строка отключает таймаут.
	JoinTimeout string `json:"joinTimeout" yaml:"joinTimeout" validate:"omitempty,duration"`
}

// GetJoinTimeout разбирает JoinTimeout; ноль означает ожидание без ограничения.
func (d *DetailConf) GetJoinTimeout() time.Duration {
	if d.JoinTimeout == "" {
		return 0
	}
	timeout, err := time.ParseDuration(d.JoinTimeout)
	if err != nil {
		return 0
	}
	return timeout
}

// MustLoad читает файл конфигурации, применяет значения из окружения и валидирует структуру.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// Load делает то же, что MustLoad, но возвращает ошибку вместо паники.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	var cfg Config
	if err := decode(path, data, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := configValidator.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// decode выбирает формат по расширению файла: YAML для .yaml/.yml, иначе JSON.
func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

// applyEnvOverrides подменяет поля конфигурации значениями из переменных окружения.
func applyEnvOverrides(cfg *Config) {
	override := func(key string, target *string) {
		if val := os.Getenv(key); val != "" {
			*target = val
		}
	}

	override("HTTP_HOST", &cfg.HTTPServConf.Host)
	override("HTTP_PORT", &cfg.HTTPServConf.Port)
	override("HTTP_BASE_URL", &cfg.HTTPServConf.BaseURL)

	override("DB_HOST", &cfg.DBConf.Host)
	override("DB_PORT", &cfg.DBConf.Port)
	override("DB_USER", &cfg.DBConf.User)
	override("DB_PASSWORD", &cfg.DBConf.Password)
	override("DB_NAME", &cfg.DBConf.Name)

	override("DETAIL_JOIN_TIMEOUT", &cfg.DetailConf.JoinTimeout)
}

// newConfigValidator настраивает валидатор и регистрирует пользовательские проверки.
func newConfigValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("is-number", func(fl validator.FieldLevel) bool {
		return numberRegex.MatchString(fl.Field().String())
	}); err != nil {
		panic("failed to register is-number validation: " + err.Error())
	}
	if err := v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		d, err := time.ParseDuration(fl.Field().String())
		return err == nil && d >= 0
	}); err != nil {
		panic("failed to register duration validation: " + err.Error())
	}
	return v
}
