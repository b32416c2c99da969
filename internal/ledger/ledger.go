package ledger

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// account — счёт одного пользователя со своим мьютексом.
type account struct {
	mu      sync.Mutex
	balance float64
}

// Ledger владеет балансами пользователей. Балансы никогда не уходят в минус,
// а сумма всех балансов сохраняется при любых переводах.
//
// Каждый счёт защищён собственным мьютексом: переводы по непересекающимся
// парам пользователей не блокируют друг друга. Когда перевод затрагивает
// двух пользователей, их мьютексы берутся в порядке возрастания
// идентификаторов, чтобы встречные переводы не взаимоблокировались.
type Ledger struct {
	mu       sync.Mutex // защищает только карту счетов
	accounts map[uuid.UUID]*account
}

// New создаёт пустой реестр балансов.
func New() *Ledger {
	return &Ledger{
		accounts: make(map[uuid.UUID]*account),
	}
}

// Get возвращает текущий баланс пользователя. Для неизвестного пользователя — 0.
func (l *Ledger) Get(userID uuid.UUID) float64 {
	acct := l.account(userID)
	acct.mu.Lock()
	defer acct.mu.Unlock()
	return acct.balance
}

// Deposit зачисляет amount на баланс пользователя. Отрицательные и нулевые
// суммы игнорируются.
func (l *Ledger) Deposit(userID uuid.UUID, amount float64) float64 {
	acct := l.account(userID)
	acct.mu.Lock()
	defer acct.mu.Unlock()
	if amount > 0 {
		acct.balance += amount
	}
	return acct.balance
}

// Transfer атомарно списывает amount у from и зачисляет to.
// Возвращает false и ничего не меняет, если средств недостаточно,
// сумма не положительна или отправитель совпадает с получателем.
// Недостаток средств — ожидаемый исход, не ошибка.
//
// Проверка средств и обе мутации выполняются под двумя мьютексами счетов:
// перевод по паре {a,b} конкурирует только с операциями над a или b.
func (l *Ledger) Transfer(from, to uuid.UUID, amount float64) bool {
	if amount <= 0 || from == to {
		return false
	}

	fromAcct, toAcct := l.account(from), l.account(to)

	first, second := fromAcct, toAcct
	if strings.Compare(from.String(), to.String()) > 0 {
		first, second = toAcct, fromAcct
	}

	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if fromAcct.balance < amount {
		return false
	}
	fromAcct.balance -= amount
	toAcct.balance += amount
	return true
}

// Snapshot возвращает копию всех балансов.
func (l *Ledger) Snapshot() map[uuid.UUID]float64 {
	l.mu.Lock()
	accounts := make(map[uuid.UUID]*account, len(l.accounts))
	for id, acct := range l.accounts {
		accounts[id] = acct
	}
	l.mu.Unlock()

	out := make(map[uuid.UUID]float64, len(accounts))
	for id, acct := range accounts {
		acct.mu.Lock()
		out[id] = acct.balance
		acct.mu.Unlock()
	}
	return out
}

// account возвращает счёт пользователя, создавая его при первом обращении.
func (l *Ledger) account(userID uuid.UUID) *account {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[userID]
	if !ok {
		acct = &account{}
		l.accounts[userID] = acct
	}
	return acct
}
