package handlers

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"miniblog/pkg/session"
	"miniblog/pkg/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
)

type UserHandler struct {
	Sm           session.SessionManager
	Repo         UsersRepo
	PostsRepo    PostsRepo
	CommentsRepo CommentsRepo
	Logger       *zap.SugaredLogger
}

type UsersRepo interface {
	GetByID(id int64) (*user.User, error)
	GetByUsername(username string) (*user.User, error)
	Add(user *user.User) (int64, error)
	Update(user *user.User) error
	Delete(id int64) (bool, error)
}

type AuthReq struct {
	Password *string `json:"password"`
	Username *string `json:"username"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

type ProfileReq struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
}

type ProfileResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (r *ProfileReq) validate() []*CustomError {
	usr := &Validator{value: r.Username, location: "body", field: "username"}
	usrErr := func() *CustomError {
		err := usr.Required()
		if err != nil {
			return err
		}
		err = usr.Empty()
		if err != nil {
			return err
		}
		err = usr.MaxLength(32)
		if err != nil {
			return err
		}
		return usr.Matches("^[a-zA-Z0-9_-]+$")
	}()

	var emailErr *CustomError
	if r.Email != nil {
		email := &Validator{value: r.Email, location: "body", field: "email"}
		emailErr = email.Matches(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	}

	var firstErr, lastErr *CustomError
	if r.FirstName != nil {
		first := &Validator{value: r.FirstName, location: "body", field: "first_name"}
		firstErr = first.MaxLength(100)
	}
	if r.LastName != nil {
		last := &Validator{value: r.LastName, location: "body", field: "last_name"}
		lastErr = last.MaxLength(100)
	}

	return mergeErrors(usrErr, firstErr, lastErr, emailErr)
}

func (r *AuthReq) validate() []*CustomError {
	usr := &Validator{value: r.Username, location: "body", field: "username"}
	usrErr := func() *CustomError {
		err := usr.Required()
		if err != nil {
			return err
		}
		err = usr.Empty()
		if err != nil {
			return err
		}
		err = usr.MaxLength(32)
		if err != nil {
			return err
		}
		err = usr.Custom(func(value string) bool {
			return strings.TrimSpace(value) == value
		}, "cannot start or end with whitespace")
		if err != nil {
			return err
		}

		return usr.Matches("^[a-zA-Z0-9_-]+$")
	}()

	pwd := &Validator{value: r.Password, location: "body", field: "password"}
	pwdErr := func() *CustomError {
		err := pwd.Required()
		if err != nil {
			return err
		}
		err = pwd.Empty()
		if err != nil {
			return err
		}
		err = pwd.MinLength(8)
		if err != nil {
			return err
		}
		return pwd.MaxLength(72)
	}()

	return mergeErrors(usrErr, pwdErr)
}

func (u *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	authReq, ok := u.readAuthReq(w, r)
	if !ok {
		return
	}

	account, err := u.Repo.GetByUsername(*authReq.Username)
	if err != nil {
		u.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if account == nil {
		WriteResponse(w, "user not found", http.StatusUnauthorized)
		return
	}

	if !checkPass(account.Password, *authReq.Password) {
		WriteResponse(w, "invalid password", http.StatusUnauthorized)
		return
	}

	u.writeAuthResponse(w, account, http.StatusOK)
}

func (u *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	authReq, ok := u.readAuthReq(w, r)
	if !ok {
		return
	}

	existing, err := u.Repo.GetByUsername(*authReq.Username)
	if err != nil {
		u.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if existing != nil {
		validationError := &CustomError{Location: "body", Param: "username", Value: *authReq.Username, Msg: "already exists"}
		writeErrorsResponse(w, []*CustomError{validationError}, http.StatusUnprocessableEntity)
		return
	}

	salt := make([]byte, 8)
	rand.Read(salt)

	account := &user.User{
		Username: *authReq.Username,
		Password: HashPass(salt, *authReq.Password),
	}

	id, err := u.Repo.Add(account)
	if err != nil {
		u.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	account.ID = id

	u.writeAuthResponse(w, account, http.StatusCreated)
}

// UpdateProfile edits the authenticated user's profile. Omitted first name,
// last name and email are cleared; the password is untouched.
func (u *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess, err := session.SessionFromContext(r.Context())
	if err != nil {
		u.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		u.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	var req ProfileReq
	if err = json.Unmarshal(body, &req); err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
		return
	}

	if validationErrors := req.validate(); len(validationErrors) > 0 {
		writeErrorsResponse(w, validationErrors, http.StatusUnprocessableEntity)
		return
	}

	account, err := u.Repo.GetByID(sess.User.ID)
	if err != nil {
		u.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if account == nil {
		WriteResponse(w, "user not found", http.StatusNotFound)
		return
	}

	if *req.Username != account.Username {
		existing, err := u.Repo.GetByUsername(*req.Username)
		if err != nil {
			u.Logger.Error(err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if existing != nil {
			validationError := &CustomError{Location: "body", Param: "username", Value: *req.Username, Msg: "already exists"}
			writeErrorsResponse(w, []*CustomError{validationError}, http.StatusUnprocessableEntity)
			return
		}
	}

	account.Username = *req.Username
	account.FirstName = ""
	account.LastName = ""
	account.Email = ""
	if req.FirstName != nil {
		account.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		account.LastName = *req.LastName
	}
	if req.Email != nil {
		account.Email = *req.Email
	}

	if err = u.Repo.Update(account); err != nil {
		u.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, &ProfileResponse{
		ID:        account.ID,
		Username:  account.Username,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Email:     account.Email,
	}, http.StatusOK)
}

// DeleteAccount removes the authenticated user together with everything they
// own: their posts, all comments on those posts, and their comments on other
// posts. Sessions are revoked last.
func (u *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	sess, err := session.SessionFromContext(r.Context())
	if err != nil {
		u.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	owned, err := u.PostsRepo.GetByAuthorID(ctx, sess.User.ID)
	if err != nil {
		u.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	for _, p := range owned {
		if _, err = u.CommentsRepo.DeleteByPostID(ctx, p.ID); err != nil {
			u.Logger.Error(err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}

	if _, err = u.CommentsRepo.DeleteByAuthorID(ctx, sess.User.ID); err != nil {
		u.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if _, err = u.PostsRepo.DeleteByAuthorID(ctx, sess.User.ID); err != nil {
		u.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	ok, err := u.Repo.Delete(sess.User.ID)
	if err != nil {
		u.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !ok {
		WriteResponse(w, "user not found", http.StatusNotFound)
		return
	}

	if err = u.Sm.DestroyAll(ctx, sess.User); err != nil {
		u.Logger.Error(err.Error())
	}

	WriteResponse(w, "success", http.StatusOK)
}

func HashPass(salt []byte, plainPassword string) []byte {
	hashedPass := argon2.IDKey([]byte(plainPassword), salt, 1, 64*1024, 4, 32)
	return append(salt, hashedPass...)
}

func checkPass(passHash []byte, plainPassword string) bool {
	if len(passHash) < 8 {
		return false
	}
	salt := make([]byte, 8)
	copy(salt, passHash[0:8])
	return bytes.Equal(HashPass(salt, plainPassword), passHash)
}

func (u *UserHandler) readAuthReq(w http.ResponseWriter, r *http.Request) (*AuthReq, bool) {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		u.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return nil, false
	}

	var authReq AuthReq
	if err = json.Unmarshal(body, &authReq); err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
		return nil, false
	}

	if validationErrors := authReq.validate(); len(validationErrors) > 0 {
		writeErrorsResponse(w, validationErrors, http.StatusUnprocessableEntity)
		return nil, false
	}

	return &authReq, true
}

func (u *UserHandler) writeAuthResponse(w http.ResponseWriter, account *user.User, status int) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	sessID := uuid.New().String()
	expiresAt := time.Now().Add(2 * time.Hour).Unix()
	token, err := u.Sm.Create(ctx, w, &session.User{ID: account.ID, Username: account.Username}, sessID, expiresAt)
	if err != nil {
		u.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, &AuthResponse{Token: token}, status)
}
