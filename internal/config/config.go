package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	DSN       string          `yaml:"dsn" env:"DSN" env-required:"true"`
	HTTP      HTTPConfig      `yaml:"http"`
	Redis     RedisConf       `yaml:"redis"`
	AssetHost AssetHostConfig `yaml:"asset_host"`
	Auth      AuthConfig      `yaml:"auth"`
}

type HTTPConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db"`
}

// AssetHostConfig selects and configures the external media host.
// Provider is one of "cloudinary", "minio" or "local".
type AssetHostConfig struct {
	Provider    string           `yaml:"provider" env-default:"cloudinary"`
	ImageFolder string           `yaml:"image_folder" env-default:"VLTWebsite"`
	AudioFolder string           `yaml:"audio_folder" env-default:"VLTWebsite/Music"`
	Cloudinary  CloudinaryConfig `yaml:"cloudinary"`
	MinIO       MinIOConfig      `yaml:"minio"`
	Local       LocalHostConfig  `yaml:"local"`
}

type CloudinaryConfig struct {
	CloudName    string `yaml:"cloud_name" env:"CLOUDINARY_CLOUD_NAME"`
	UploadPreset string `yaml:"upload_preset" env:"CLOUDINARY_UPLOAD_PRESET"`
	APIKey       string `yaml:"api_key" env:"CLOUDINARY_API_KEY"`
	APISecret    string `yaml:"api_secret" env:"CLOUDINARY_API_SECRET"`
}

type MinIOConfig struct {
	Endpoint        string `yaml:"endpoint" env:"MINIO_ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" env:"MINIO_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"MINIO_SECRET_ACCESS_KEY"`
	Bucket          string `yaml:"bucket" env-default:"vltweb"`
	UseSSL          bool   `yaml:"use_ssl"`
}

type LocalHostConfig struct {
	BaseDir string `yaml:"base_dir" env-default:"./uploads"`
	BaseURL string `yaml:"base_url" env-default:"http://localhost:8080/uploads"`
}

// AuthConfig carries the credential set for the admin gate. Secrets are
// stored as bcrypt hashes, never as literals.
type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL    time.Duration `yaml:"token_ttl" env-default:"12h"`
	Credentials []Credential  `yaml:"credentials"`
}

type Credential struct {
	Role       string `yaml:"role"`
	SecretHash string `yaml:"secret_hash"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
