package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maplewood/library/internal/entities"
)

// MemberStore defines database operations for library members.
type MemberStore interface {
	FindAll() ([]entities.Member, error)
	FindByID(id uint) (*entities.Member, error)
	Create(member *entities.Member) (uint, error)
	Update(id uint, member *entities.Member) error
	UpdateStatus(id uint, status entities.MembershipStatus) error
	Delete(id uint) error
	Search(query string) ([]entities.Member, error)
}

type MembersController struct {
	store MemberStore
}

func NewMembersController(store MemberStore) *MembersController {
	return &MembersController{store: store}
}

type memberRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	MembershipType   string `json:"membership_type"`
	MembershipStatus string `json:"membership_status"`
}

// GetAllMembers returns every member.
// GET /api/members
func (mc *MembersController) GetAllMembers(c *gin.Context) {
	members, err := mc.store.FindAll()
	if err != nil {
		respondInternalError(c, err, "get all members")
		return
	}
	c.JSON(http.StatusOK, members)
}

// GetMember returns a single member.
// GET /api/members/:id
func (mc *MembersController) GetMember(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	member, err := mc.store.FindByID(id)
	if err != nil {
		respondRepositoryError(c, err, "Member", "get member")
		return
	}
	c.JSON(http.StatusOK, member)
}

// SearchMembers matches members by name, email or phone.
// GET /api/members/search?q=
func (mc *MembersController) SearchMembers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "Search query is required")
		return
	}

	members, err := mc.store.Search(query)
	if err != nil {
		respondInternalError(c, err, "search members")
		return
	}
	c.JSON(http.StatusOK, members)
}

// CreateMember registers a member without credentials; self-service signup
// with a password goes through the auth endpoints instead.
// POST /api/members
func (mc *MembersController) CreateMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		respondBadRequest(c, "Missing required fields")
		return
	}

	member := &entities.Member{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		MembershipType: entities.MembershipType(req.MembershipType),
	}

	id, err := mc.store.Create(member)
	if err != nil {
		respondRepositoryError(c, err, "Member", "create member")
		return
	}
	respondCreated(c, id, "Member created successfully")
}

// UpdateMember replaces a member's contact fields and optionally its status.
// PUT /api/members/:id
func (mc *MembersController) UpdateMember(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		respondBadRequest(c, "Missing required fields")
		return
	}

	status := entities.MembershipStatus(req.MembershipStatus)
	if req.MembershipStatus != "" && !entities.ValidMembershipStatus(status) {
		respondBadRequest(c, "Invalid status value")
		return
	}

	member := &entities.Member{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		Address:          req.Address,
		MembershipType:   entities.MembershipType(req.MembershipType),
		MembershipStatus: status,
	}

	if err := mc.store.Update(id, member); err != nil {
		respondRepositoryError(c, err, "Member", "update member")
		return
	}
	respondMessage(c, "Member updated successfully")
}

// UpdateMemberStatus sets the membership status.
// PATCH /api/members/:id/status
func (mc *MembersController) UpdateMemberStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	status := entities.MembershipStatus(req.Status)
	if !entities.ValidMembershipStatus(status) {
		respondBadRequest(c, "Invalid status value")
		return
	}

	if err := mc.store.UpdateStatus(id, status); err != nil {
		respondRepositoryError(c, err, "Member", "update member status")
		return
	}
	respondMessage(c, "Member status updated successfully")
}

// DeleteMember removes a member and their loan history. Members with loans
// still out are rejected with a 400.
// DELETE /api/members/:id
func (mc *MembersController) DeleteMember(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := mc.store.Delete(id); err != nil {
		respondRepositoryError(c, err, "Member", "delete member")
		return
	}
	respondMessage(c, "Member deleted successfully")
}
