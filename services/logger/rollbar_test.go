package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/deptportal/core"
)

func TestRollbarLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := NewRollbarLogger(log.New(buf, "", 0), &core.Config{Env: "TEST"})
	logger.Enable(false)

	logger.Info("server started")
	logger.Error(
		"submitting assignment",
		errors.New("boom"),
		map[string]interface{}{"record_id": "asg-1"},
		core.Person{ID: "admin@dept.edu", Email: "admin@dept.edu"},
	)

	out := buf.String()
	assert.Contains(t, out, "[info] server started\n")
	assert.Contains(t, out, "[error] submitting assignment\n")
	assert.Contains(t, out, "\tboom\n")
	assert.Contains(t, out, "record_id:asg-1")
	assert.NotContains(t, out, "admin@dept.edu")
}
