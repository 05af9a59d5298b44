package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string

	Database DatabaseConfigs
	Server   ServerConfigs
	Redis    RedisConfigs
	Post     PostConfigs
	Proposal ProposalConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string
}

type RedisConfigs struct {
	Addr string
}

type PostConfigs struct {
	WebsiteURL string

	// CreateLimitWindow is how long a user must wait between two posts.
	CreateLimitWindow time.Duration

	// CommentLimitPerMinute is the maximum number of comments a user can
	// write within one minute.
	CommentLimitPerMinute int
}

type ProposalConfigs struct {
	Quorum           int
	ApproveThreshold int
	Duration         time.Duration
}
