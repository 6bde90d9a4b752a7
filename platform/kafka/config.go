package kafka

// Config содержит конфигурацию для подключения к Kafka
type Config struct {
	// Brokers — список брокеров Kafka, через который подключаются сервисы.
	// Значение зависит от среды выполнения:
	//   - локальная разработка (go run): localhost:19092
	//   - запуск в Docker: kafka:9092
	// Можно указать несколько брокеров через запятую: "broker1:9092,broker2:9092"
	Brokers []string `env:"KAFKA_BOOTSTRAP_SERVERS" envSeparator:","`
	// Retries — количество попыток доставки при публикации события
	Retries int `env:"KAFKA_RETRIES" envDefault:"3"`
}

// DefaultConfig возвращает конфигурацию с дефолтными значениями для локальной разработки.
// Сервисы должны получать актуальные значения через переменные окружения (KAFKA_BOOTSTRAP_SERVERS).
func DefaultConfig() Config {
	return Config{
		Brokers: []string{"localhost:19092"},
		Retries: 3,
	}
}
