package domain

import "errors"

var (
	// ErrAmountMustBePositive 金額必須為正數
	ErrAmountMustBePositive = errors.New("amount must be positive")

	// ErrNegativeBalance 餘額不可為負數
	ErrNegativeBalance = errors.New("balance must not be negative")

	// ErrInsufficientBalance 餘額不足
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidAccountID 帳戶 ID 格式錯誤
	ErrInvalidAccountID = errors.New("invalid account id")

	// ErrInvalidBalance 餘額字串無法解析
	ErrInvalidBalance = errors.New("invalid balance")

	// ErrCorruptDocument 持久化文件損毀 (初始化時視為致命錯誤)
	ErrCorruptDocument = errors.New("corrupt account document")

	// ErrStorageNotInitialized 儲存層尚未初始化
	ErrStorageNotInitialized = errors.New("storage not initialized")

	// ErrUnknownStorageType 不支援的儲存引擎
	ErrUnknownStorageType = errors.New("unknown storage type")

	// ErrJournalWriteFailed 寫入轉帳日誌失敗
	ErrJournalWriteFailed = errors.New("journal write failed")
)
