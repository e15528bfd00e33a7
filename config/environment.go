package config

// Environment representa o ambiente de execução da aplicação
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// String retorna o nome do ambiente
func (e Environment) String() string {
	return string(e)
}

// IsProduction informa se o ambiente é produção
func (e Environment) IsProduction() bool {
	return e == Production
}

// ParseEnvironment normaliza o valor informado; valores desconhecidos viram Development
func ParseEnvironment(v string) Environment {
	switch Environment(v) {
	case Production:
		return Production
	case Testing:
		return Testing
	default:
		return Development
	}
}
