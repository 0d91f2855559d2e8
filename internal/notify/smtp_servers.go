package notify

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"

	"github.com/spec-kit/account-service/internal/config"
)

// SMTPServer describes one outbound SMTP relay.
type SMTPServer struct {
	Host               string `yaml:"host"`
	Port               string `yaml:"port"`
	Connections        int    `yaml:"connections"`
	InsecureSkipVerify bool   `yaml:"insecureSkipVerify"`
	AuthData           struct {
		Username string `yaml:"user"`
		Password string `yaml:"password"`
	} `yaml:"auth"`
	SendTimeout int `yaml:"sendTimeout"`
}

// Address returns host:port.
func (s SMTPServer) Address() string {
	return s.Host + ":" + s.Port
}

// SMTPServerList is the YAML document listing relays used round-robin.
type SMTPServerList struct {
	Servers []SMTPServer `yaml:"servers"`
}

// ReadServerListFromFile parses a server list file.
func ReadServerListFromFile(fname string) (SMTPServerList, error) {
	var list SMTPServerList
	content, err := os.ReadFile(fname)
	if err != nil {
		return list, fmt.Errorf("read smtp server list: %w", err)
	}
	if err := yaml.UnmarshalStrict(content, &list); err != nil {
		return list, fmt.Errorf("parse smtp server list: %w", err)
	}
	if len(list.Servers) == 0 {
		return list, fmt.Errorf("smtp server list %s is empty", fname)
	}
	return list, nil
}

// ServerListFromConfig returns the servers named by SMTP_SERVERS_FILE,
// or a single server built from the SMTP_* variables.
func ServerListFromConfig(cfg config.SMTPConfig) (SMTPServerList, error) {
	if cfg.ServersFile != "" {
		return ReadServerListFromFile(cfg.ServersFile)
	}

	server := SMTPServer{
		Host:               cfg.Host,
		Port:               strconv.Itoa(cfg.Port),
		Connections:        cfg.Connections,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		SendTimeout:        cfg.SendTimeoutSeconds,
	}
	server.AuthData.Username = cfg.Username
	server.AuthData.Password = cfg.Password
	return SMTPServerList{Servers: []SMTPServer{server}}, nil
}
