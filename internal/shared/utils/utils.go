package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hibiken/asynq"
)

func GetEnvVariable(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// UnmarshalTask decodes an asynq task payload into dest
func UnmarshalTask(t *asynq.Task, dest interface{}) error {
	if err := json.Unmarshal(t.Payload(), dest); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", t.Type(), err)
	}
	return nil
}
