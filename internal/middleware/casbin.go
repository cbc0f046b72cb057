package middleware

import (
	"errors"
	"net/http"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"city.newnan/rcon-console/internal/model"
)

// rbacModel 角色 + 路径通配 + 方法匹配
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// 内置策略: 只读会话可以查看，不能执行命令
var defaultPolicies = [][]string{
	{model.RoleViewer, "/api/v1/console/players", http.MethodGet},
	{model.RoleViewer, "/api/v1/console/log", http.MethodGet},
	{model.RoleViewer, "/api/v1/console/status", http.MethodGet},
	{model.RoleViewer, "/api/v1/session/logout", http.MethodPost},
	{model.RoleViewer, "/api/v1/sse", http.MethodGet},
	{model.RoleViewer, "/api/v1/ws", http.MethodGet},
	{model.RoleOperator, "/api/v1/console/command", http.MethodPost},
}

var (
	enforcer *casbin.Enforcer
)

// InitCasbin 初始化Casbin，策略保存在数据库中
func InitCasbin(gormDB *gorm.DB) error {
	adapter, err := gormadapter.NewAdapterByDB(gormDB)
	if err != nil {
		return err
	}

	m, err := casbinmodel.NewModelFromString(rbacModel)
	if err != nil {
		return err
	}

	e, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return err
	}

	if err := e.LoadPolicy(); err != nil {
		return err
	}

	enforcer = e
	return nil
}

// SetupPolicies 写入内置策略，操作员继承只读会话的全部权限
func SetupPolicies() error {
	if enforcer == nil {
		return errors.New("权限系统未初始化")
	}

	for _, p := range defaultPolicies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return err
		}
	}
	if _, err := enforcer.AddRoleForUser(model.RoleOperator, model.RoleViewer); err != nil {
		return err
	}
	return nil
}

// GetEnforcer 获取Casbin执行器
func GetEnforcer() *casbin.Enforcer {
	return enforcer
}

// Allowed 检查角色能否访问 obj
func Allowed(role, obj, act string) (bool, error) {
	if enforcer == nil {
		return false, errors.New("权限系统未初始化")
	}
	return enforcer.Enforce(role, obj, act)
}

// Authorize 授权中间件，需要放在 JWTAuth 之后
func Authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetCurrentRole(c)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse(http.StatusUnauthorized, model.MsgNotLoggedIn))
			return
		}

		ok, err := Allowed(role, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse(http.StatusInternalServerError, "权限检查失败: "+err.Error()))
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, model.ErrorResponse(http.StatusForbidden, "权限不足: 只读会话不能执行此操作"))
			return
		}

		c.Next()
	}
}
