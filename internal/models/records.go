package models

import "time"

// Account представляет счёт пользователя
type Account struct {
	UpdatedAt   time.Time `json:"updated_at"`       // время последнего изменения на сервере
	Balance     Amount    `json:"balance"`          // текущий баланс
	Name        string    `json:"name"`             // отображаемое имя
	Type        string    `json:"type"`             // checking, savings, credit ...
	Institution string    `json:"institution"`      // банк
	ID          int64     `json:"id"`               // серверный ID
	Hidden      bool      `json:"hidden,omitempty"` // локальный флаг, сервер его не присылает
}

// Transaction представляет операцию по счёту
type Transaction struct {
	Date          time.Time `json:"date"`                     // дата операции
	UpdatedAt     time.Time `json:"updated_at"`               // время последнего изменения на сервере
	Amount        Amount    `json:"amount"`                   // сумма операции
	Description   string    `json:"description"`              // описание
	Status        string    `json:"status"`                   // pending, posted
	ID            int64     `json:"id"`                       // серверный ID
	AccountID     int64     `json:"account_id"`               // FK на Account
	MerchantID    int64     `json:"merchant_id,omitempty"`    // ID мерчанта, не связывается
	Reviewed      bool      `json:"reviewed,omitempty"`       // локальный флаг
	AccountLinked bool      `json:"account_linked,omitempty"` // счёт найден локально
}

// Goal представляет накопительную цель
type Goal struct {
	DueDate       *time.Time `json:"due_date,omitempty"`       // срок, если задан
	Target        Amount     `json:"target"`                   // целевая сумма
	Saved         Amount     `json:"saved"`                    // накоплено
	Name          string     `json:"name"`                     // название
	ID            int64      `json:"id"`                       // серверный ID
	AccountID     int64      `json:"account_id,omitempty"`     // необязательный FK на Account
	AccountLinked bool       `json:"account_linked,omitempty"` // счёт найден локально
}

// Bill представляет регулярный платёж
type Bill struct {
	DueDate       time.Time `json:"due_date"`                 // ближайшая дата платежа
	Amount        Amount    `json:"amount"`                   // сумма платежа
	Payee         string    `json:"payee"`                    // получатель
	Recurrence    string    `json:"recurrence"`               // monthly, weekly ...
	ID            int64     `json:"id"`                       // серверный ID
	AccountID     int64     `json:"account_id,omitempty"`     // необязательный FK на Account
	AccountLinked bool      `json:"account_linked,omitempty"` // счёт найден локально
}

// Card представляет платёжную карту
type Card struct {
	Limit         Amount `json:"limit"`                    // кредитный лимит
	Last4         string `json:"last4"`                    // последние 4 цифры номера
	Network       string `json:"network"`                  // visa, mastercard ...
	Status        string `json:"status"`                   // active, frozen, closed
	ID            int64  `json:"id"`                       // серверный ID
	AccountID     int64  `json:"account_id"`               // FK на Account
	AccountLinked bool   `json:"account_linked,omitempty"` // счёт найден локально
}

// Contact представляет получателя переводов
type Contact struct {
	Name  string `json:"name"`            // имя
	Email string `json:"email,omitempty"` // email
	Phone string `json:"phone,omitempty"` // телефон
	ID    int64  `json:"id"`              // серверный ID
}
