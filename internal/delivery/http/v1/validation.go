package v1

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

const taskStatusTag = "task_status"

var registerValidatorsOnce sync.Once

func mustRegisterValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic(fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine()))
		}

		err := v.RegisterValidation(taskStatusTag, validateTaskStatus)
		if err != nil {
			panic(err)
		}
	})
}

// validateTaskStatus accepts a status key or its display label.
func validateTaskStatus(fl validator.FieldLevel) bool {
	_, err := models.ParseStatus(fl.Field().String())
	return err == nil
}
