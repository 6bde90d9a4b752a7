package templates

import (
	"bytes"
	"fmt"
	"text/template"

	"go.uber.org/zap"

	"github.com/char1ks/pizzas/services/notification/internal/repository"
)

// Renderer рендерит шаблоны уведомлений, хранящиеся в БД.
// Шаблоны используют синтаксис text/template; отсутствующий
// placeholder считается ошибкой рендеринга (missingkey=error),
// сервис в этом случае подставляет жёсткий fallback-текст.
type Renderer struct {
	logger *zap.Logger
}

// NewRenderer создаёт новый renderer
func NewRenderer(logger *zap.Logger) *Renderer {
	return &Renderer{
		logger: logger,
	}
}

// Render рендерит заголовок и текст уведомления из шаблона
func (r *Renderer) Render(tmpl repository.Template, data map[string]interface{}) (subject, message string, err error) {
	subject, err = r.render(tmpl.Type+":title", tmpl.TitleTemplate, data)
	if err != nil {
		return "", "", fmt.Errorf("failed to render title template: %w", err)
	}

	message, err = r.render(tmpl.Type+":message", tmpl.MessageTemplate, data)
	if err != nil {
		return "", "", fmt.Errorf("failed to render message template: %w", err)
	}

	return subject, message, nil
}

func (r *Renderer) render(name, text string, data map[string]interface{}) (string, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatMoney форматирует сумму в минорных единицах в строку с двумя знаками.
// События переносят целые копейки, форматирование денег живёт только здесь.
func FormatMoney(minorUnits int64) string {
	return fmt.Sprintf("%.2f", float64(minorUnits)/100)
}
