package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/fet-timetable-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "fet", Password: "pw", Name: "timetable", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5433 user=fet password=pw dbname=timetable sslmode=disable", dsn)
}
