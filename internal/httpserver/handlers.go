package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/service/catalog"
	"storefront/internal/service/identity"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type handlers struct {
	deps   Deps
	logger zerolog.Logger
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	identity.Token
	User *domain.User `json:"user"`
}

type productListResponse struct {
	Count   int              `json:"count"`
	Results []domain.Product `json:"results"`
}

// formValue accepts a JSON string or number and keeps its text, so form
// fields can be validated the same way whether a client quotes them or not.
type formValue string

func (v *formValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = formValue(s)
		return nil
	}
	*v = formValue(b)
	return nil
}

type productRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       formValue `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	Stock       formValue `json:"stock"`
}

func (r productRequest) form() catalog.ProductForm {
	return catalog.ProductForm{
		Name:        r.Name,
		Description: r.Description,
		Price:       string(r.Price),
		ImageURL:    r.ImageURL,
		Stock:       string(r.Stock),
	}
}

func badBody(err error) error {
	return domain.NewValidationError("body", "is not valid JSON: "+err.Error())
}

func (h *handlers) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, badBody(err))
		return
	}
	u, err := h.deps.Auth.Signup(c.Request.Context(), identity.SignupInput{Email: req.Email, Password: req.Password})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *handlers) token(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, badBody(err))
		return
	}
	u, tok, err := h.deps.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: tok, User: u})
}

func (h *handlers) signOut(c *gin.Context) {
	id := identityFrom(c)
	if err := h.deps.Auth.SignOut(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.deps.Carts.Drop(id.UserID)
	c.Status(http.StatusNoContent)
}

func (h *handlers) me(c *gin.Context) {
	u, err := h.deps.Auth.Profile(c.Request.Context(), identityFrom(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.deps.Catalog.Search(c.Request.Context(), strings.TrimSpace(c.Query("q")))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, productListResponse{Count: len(products), Results: products})
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.Catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, badBody(err))
		return
	}
	p, err := h.deps.Catalog.CreateProduct(c.Request.Context(), identityFrom(c), req.form())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) updateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, badBody(err))
		return
	}
	p, err := h.deps.Catalog.UpdateProduct(c.Request.Context(), identityFrom(c), c.Param("id"), req.form())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) deleteProduct(c *gin.Context) {
	if err := h.deps.Catalog.DeleteProduct(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
