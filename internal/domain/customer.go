package domain

// Customer описывает клиента, на которого оформляются заказы.
// Ядро жизненного цикла заказов клиента не мутирует — только ссылается.
type Customer struct {
	ID      string
	Name    string
	Email   string
	Phone   string
	Address string
}

// Validate проверяет минимально необходимые поля клиента.
func (c *Customer) Validate() []error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, ErrCustomerNameRequired)
	}
	if c.Email == "" {
		errs = append(errs, ErrCustomerEmailRequired)
	}

	return errs
}
