package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hibiken/asynq"
)

// GetEnvVariable returns the environment variable value or a fallback.
func GetEnvVariable(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// MarshalTask builds an asynq task from a JSON-serializable payload.
func MarshalTask(taskType string, payload interface{}) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal task %s: %w", taskType, err)
	}
	return asynq.NewTask(taskType, b), nil
}

// UnmarshalTask decodes a task payload into the given target.
func UnmarshalTask(t *asynq.Task, target interface{}) error {
	if err := json.Unmarshal(t.Payload(), target); err != nil {
		return fmt.Errorf("unmarshal task %s: %w", t.Type(), err)
	}
	return nil
}
