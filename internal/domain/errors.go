package domain

import "errors"

var (
	// ErrCartSnapshotNotFound возвращается хранилищем, если слот корзины ещё не записан.
	ErrCartSnapshotNotFound = errors.New("cart snapshot not found")
	// ErrCartKeyRequired — пустой ключ слота корзины.
	ErrCartKeyRequired = errors.New("cart storage key is required")
	// ErrCartSnapshotCorrupted — снимок корзины не удалось декодировать.
	ErrCartSnapshotCorrupted = errors.New("cart snapshot is corrupted")
	// ErrCartQuantityLimit — мутация вывела бы число единиц в корзине за предел.
	ErrCartQuantityLimit = errors.New("cart quantity limit exceeded")
	// ErrSessionRequired — запрос к корзине без идентификатора сессии.
	ErrSessionRequired = errors.New("session id is required")

	// ErrProductNotFound — товар отсутствует в каталоге.
	ErrProductNotFound = errors.New("product not found")

	// ErrSignupFieldsRequired — не заполнены name/email/password.
	ErrSignupFieldsRequired = errors.New("missing required fields")
	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists — пользователь с таким email уже зарегистрирован.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")

	// ErrIdempotencyKeyRequired — пустой idempotency-key.
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	// ErrIdempotencyRequestHashRequired — не удалось посчитать hash запроса.
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	// ErrIdempotencyKeyAlreadyExists — ключ уже использован тем же запросом.
	ErrIdempotencyKeyAlreadyExists = errors.New("idempotency key already exists")
	// ErrIdempotencyHashMismatch — ключ уже использован с другим телом запроса.
	ErrIdempotencyHashMismatch = errors.New("idempotency key reused with different request")
	// ErrIdempotencyRequestInProgress — запрос с этим ключом ещё выполняется.
	ErrIdempotencyRequestInProgress = errors.New("request with this idempotency key is in progress")
	// ErrIdempotencyKeyNotFound — записи по ключу нет.
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
)

// IsIdempotencyConflict проверяет, что ошибка означает повторное использование ключа.
func IsIdempotencyConflict(err error) bool {
	return errors.Is(err, ErrIdempotencyKeyAlreadyExists) || errors.Is(err, ErrIdempotencyHashMismatch)
}
