// Package foodtuckv1 содержит контракты gRPC API витрины foodtuck.
// Сообщения передаются в JSON (content-subtype "json"), пустые запросы — emptypb.Empty.
//
// Сервер понимает только content-type application/grpc+json. Клиенты из
// New*ServiceClient выставляют его сами через grpc.CallContentSubtype(CodecName).
// Вызовы в обход них (conn.Invoke, grpcurl и другие generic-клиенты) должны
// передавать этот subtype явно, иначе запрос кодируется protobuf-кодеком и
// завершается ошибкой codes.Internal.
package foodtuckv1

// CartItem — позиция корзины. Price — десятичная строка ("9.5").
type CartItem struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Image    string `json:"image,omitempty"`
	Quantity int32  `json:"quantity"`
	Subtotal string `json:"subtotal,omitempty"`
}

func (x *CartItem) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

// Cart — состояние корзины после операции.
type Cart struct {
	Items      []*CartItem `json:"items"`
	TotalItems int32       `json:"total_items"`
	TotalPrice string      `json:"total_price"`
	// Persisted — снимок корзины записан в хранилище.
	Persisted bool `json:"persisted"`
}

func (x *Cart) GetItems() []*CartItem {
	if x != nil {
		return x.Items
	}
	return nil
}

func (x *Cart) GetTotalItems() int32 {
	if x != nil {
		return x.TotalItems
	}
	return 0
}

func (x *Cart) GetTotalPrice() string {
	if x != nil {
		return x.TotalPrice
	}
	return ""
}

func (x *Cart) GetPersisted() bool {
	if x != nil {
		return x.Persisted
	}
	return false
}

// AddToCartRequest добавляет позицию как есть.
type AddToCartRequest struct {
	Item *CartItem `json:"item"`
}

func (x *AddToCartRequest) GetItem() *CartItem {
	if x != nil {
		return x.Item
	}
	return nil
}

// AddProductRequest добавляет товар каталога по id.
type AddProductRequest struct {
	ProductId string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

func (x *AddProductRequest) GetProductId() string {
	if x != nil {
		return x.ProductId
	}
	return ""
}

// ItemRequest адресует позицию корзины по id.
type ItemRequest struct {
	Id string `json:"id"`
}

func (x *ItemRequest) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

// CartResponse — ответ любой операции корзины.
type CartResponse struct {
	Cart *Cart `json:"cart"`
}

func (x *CartResponse) GetCart() *Cart {
	if x != nil {
		return x.Cart
	}
	return nil
}

// Product — товар каталога.
type Product struct {
	Id          string   `json:"id"`
	Slug        string   `json:"slug,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price"`
	Category    string   `json:"category"`
	Rating      float64  `json:"rating,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// GetProductRequest ищет товар по id или slug.
type GetProductRequest struct {
	Id   string `json:"id,omitempty"`
	Slug string `json:"slug,omitempty"`
}

// ProductResponse — найденный товар.
type ProductResponse struct {
	Product *Product `json:"product"`
}

// ListProductsResponse — все товары каталога.
type ListProductsResponse struct {
	Products []*Product `json:"products"`
}

// Chef — повар витрины.
type Chef struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Position    string `json:"position,omitempty"`
	Experience  int32  `json:"experience,omitempty"`
	Specialty   string `json:"specialty,omitempty"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
	Available   bool   `json:"available"`
}

// ListChefsResponse — список поваров.
type ListChefsResponse struct {
	Chefs []*Chef `json:"chefs"`
}

// SignupRequest регистрирует пользователя.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User — зарегистрированный пользователь (без пароля).
type User struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SignupResponse — результат регистрации.
type SignupResponse struct {
	User *User `json:"user"`
}

func (x *SignupResponse) GetUser() *User {
	if x != nil {
		return x.User
	}
	return nil
}
