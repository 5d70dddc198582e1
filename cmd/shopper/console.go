package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/crimson-storefront/internal/checkout"
	"github.com/iliyamo/crimson-storefront/internal/model"
	"github.com/iliyamo/crimson-storefront/internal/store"
)

const help = `commands:
  products                      list the catalog
  sales                         list running sale events
  add <productID>               add one unit to the cart
  qty <productID> <n>           set a cart quantity (minimum 1)
  remove <productID>            drop a cart line
  cart                          show the cart and totals
  checkout [card|upi|netbanking|cod]
  orders                        list orders
  login <identifier> <secret>
  signup <email> <password> <name...>
  profile name|email|phone|address <value...>
  logout
  theme                         toggle dark/light
  refresh                       sync with the API again
  admin ship|deliver|cancel <orderID>
  admin delist <productID>
  admin list <price> <stock> <name...>
  admin price <productID> <price>
  admin role <userID>
  users                         list users (admin)
  status
  quit`

type console struct {
	store  *store.Store
	runner checkout.Runner
	out    io.Writer
	now    func() time.Time
}

func newConsole(st *store.Store, r checkout.Runner, out io.Writer) *console {
	return &console{store: st, runner: r, out: out, now: time.Now}
}

func (c *console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// run reads commands until quit, EOF or ctx is cancelled.
func (c *console) run(ctx context.Context, in io.Reader) error {
	c.printf("Crimson storefront. Type help for commands.\n")
	sc := bufio.NewScanner(in)
	for {
		c.printf("> ")
		if !sc.Scan() {
			return sc.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		if quit := c.exec(ctx, sc.Text()); quit {
			return nil
		}
	}
}

// exec runs one command line and reports whether the console should exit.
func (c *console) exec(ctx context.Context, line string) bool {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false
	}
	cmd, args := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		c.printf("%s\n", help)
	case "products":
		c.products()
	case "sales":
		for _, e := range c.store.ActiveSaleEvents(c.now()) {
			c.printf("%-8s %-5s %3.0f%% off  %s (until %s)\n", e.ID, e.Type, e.DiscountPercentage, e.Title, e.EndDate.Format("2 Jan"))
		}
	case "add":
		if p, ok := c.product(args); ok {
			c.store.AddToCart(p)
			c.printf("added %s (%d in cart)\n", p.Name, c.store.Snapshot().CartCount())
		}
	case "qty":
		if len(args) != 2 {
			c.printf("usage: qty <productID> <n>\n")
			break
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			c.printf("quantity must be a number\n")
			break
		}
		c.store.UpdateQuantity(args[0], n)
		c.cart()
	case "remove":
		if len(args) != 1 {
			c.printf("usage: remove <productID>\n")
			break
		}
		c.store.RemoveFromCart(args[0])
		c.cart()
	case "cart":
		c.cart()
	case "checkout":
		c.checkout(ctx, args)
	case "orders":
		c.orders()
	case "login":
		if len(args) != 2 {
			c.printf("usage: login <identifier> <secret>\n")
			break
		}
		u, err := c.store.Login(ctx, args[0], args[1])
		if err != nil {
			c.printf("login failed: %v\n", describe(err))
			break
		}
		c.printf("welcome, %s (%s)\n", u.Name, u.Role)
	case "signup":
		if len(args) < 3 {
			c.printf("usage: signup <email> <password> <name...>\n")
			break
		}
		u, err := c.store.Signup(ctx, strings.Join(args[2:], " "), args[0], args[1])
		if err != nil {
			c.printf("signup failed: %v\n", describe(err))
			break
		}
		c.printf("account %s created for %s\n", u.ID, u.Name)
	case "profile":
		c.profile(args)
	case "logout":
		c.store.Logout()
		c.printf("signed out\n")
	case "theme":
		c.printf("theme: %s\n", c.store.ToggleTheme())
	case "refresh":
		if err := c.store.Refresh(ctx); err != nil {
			c.printf("offline: %v\n", err)
			break
		}
		c.printf("synced\n")
	case "admin":
		c.admin(args)
	case "users":
		if !c.store.IsAdmin() {
			c.printf("admins only\n")
			break
		}
		for _, u := range c.store.Snapshot().Users {
			c.printf("%-14s %-5s %-20s %s\n", u.ID, u.Role, u.Name, u.Email)
		}
	case "status":
		c.status()
	default:
		c.printf("unknown command %q, type help\n", cmd)
	}
	return false
}

func (c *console) product(args []string) (model.Product, bool) {
	if len(args) != 1 {
		c.printf("usage: add <productID>\n")
		return model.Product{}, false
	}
	for _, p := range c.store.Snapshot().Products {
		if p.ID == args[0] {
			return p, true
		}
	}
	c.printf("no product %s\n", args[0])
	return model.Product{}, false
}

func (c *console) products() {
	for _, p := range c.store.Snapshot().Products {
		c.printf("%-8s %-32s %-12s ₹%9.2f  ★%.1f  stock %d\n", p.ID, p.Name, p.Category, p.Price, p.Rating, p.Stock)
	}
}

func (c *console) cart() {
	snap := c.store.Snapshot()
	if len(snap.Cart) == 0 {
		c.printf("cart is empty\n")
		return
	}
	for _, it := range snap.Cart {
		c.printf("%-8s %-32s %3d × ₹%.2f\n", it.ID, it.Name, it.Quantity, it.Price)
	}
	sub := snap.CartSubtotal()
	c.printf("subtotal ₹%.2f  shipping ₹%.2f  total ₹%.2f\n", sub, model.Shipping(sub), snap.CartTotal())
}

func (c *console) checkout(ctx context.Context, args []string) {
	method := checkout.MethodCard
	if len(args) > 0 {
		method = checkout.ParseMethod(args[0])
	}
	o, err := c.runner.Run(ctx, method, c.store, func(s checkout.Step) {
		c.printf("[%3d%%] %s\n", s.Percent, s.Message)
	})
	switch {
	case errors.Is(err, checkout.ErrNotPlaced):
		c.printf("nothing to order: sign in and fill the cart first\n")
	case err != nil:
		c.printf("checkout abandoned: %v\n", err)
	default:
		c.printf("order %s placed, total ₹%.2f\n", o.ID, o.Total)
	}
}

func (c *console) orders() {
	snap := c.store.Snapshot()
	if len(snap.Orders) == 0 {
		c.printf("no orders\n")
		return
	}
	for _, o := range snap.Orders {
		c.printf("%-13s %-10s %-14s ₹%9.2f  %s\n", o.ID, o.Status, o.UserID, o.Total, o.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
}

func (c *console) profile(args []string) {
	if len(args) < 2 {
		c.printf("usage: profile name|email|phone|address <value...>\n")
		return
	}
	v := strings.Join(args[1:], " ")
	var patch model.ProfilePatch
	switch strings.ToLower(args[0]) {
	case "name":
		patch.Name = &v
	case "email":
		patch.Email = &v
	case "phone":
		patch.Phone = &v
	case "address":
		patch.Address = &v
	default:
		c.printf("unknown profile field %s\n", args[0])
		return
	}
	u, err := c.store.UpdateProfile(patch)
	if err != nil {
		c.printf("profile: %v\n", describe(err))
		return
	}
	c.printf("profile saved for %s\n", u.Name)
}

var adminStatus = map[string]model.OrderStatus{
	"ship":    model.OrderStatusShipped,
	"deliver": model.OrderStatusDelivered,
	"cancel":  model.OrderStatusCancelled,
}

func (c *console) admin(args []string) {
	if !c.store.IsAdmin() {
		c.printf("admins only\n")
		return
	}
	if len(args) < 2 {
		c.printf("usage: admin ship|deliver|cancel <orderID> | admin delist|list|price ... | admin role <userID>\n")
		return
	}
	action, id := strings.ToLower(args[0]), args[1]
	switch action {
	case "list":
		c.listProduct(args[1:])
		return
	case "price":
		c.reprice(args[1:])
		return
	}
	if len(args) != 2 {
		c.printf("usage: admin %s <id>\n", action)
		return
	}
	if status, ok := adminStatus[action]; ok {
		if err := c.store.UpdateOrderStatus(id, status); err != nil {
			c.printf("order %s: %v\n", id, describe(err))
			return
		}
		c.printf("order %s is now %s\n", id, status)
		return
	}
	switch action {
	case "delist":
		c.store.DeleteProduct(id)
		c.printf("product %s removed\n", id)
	case "role":
		u, err := c.store.ToggleUserRole(id)
		if err != nil {
			c.printf("role: %v\n", describe(err))
			return
		}
		c.printf("%s is now %s\n", u.ID, u.Role)
	default:
		c.printf("unknown admin action %s\n", action)
	}
}

// listProduct handles "admin list <price> <stock> <name...>".
func (c *console) listProduct(args []string) {
	if len(args) < 3 {
		c.printf("usage: admin list <price> <stock> <name...>\n")
		return
	}
	price, err := strconv.ParseFloat(args[0], 64)
	if err != nil || price <= 0 {
		c.printf("price must be a positive number\n")
		return
	}
	stock, err := strconv.Atoi(args[1])
	if err != nil || stock < 0 {
		c.printf("stock must be a whole number\n")
		return
	}
	p := c.store.AddProduct(model.Product{
		Name:     strings.Join(args[2:], " "),
		Category: "General",
		Price:    price,
		Stock:    stock,
	})
	c.printf("listed %s as %s at ₹%.2f\n", p.Name, p.ID, p.Price)
}

// reprice handles "admin price <productID> <price>".
func (c *console) reprice(args []string) {
	if len(args) != 2 {
		c.printf("usage: admin price <productID> <price>\n")
		return
	}
	price, err := strconv.ParseFloat(args[1], 64)
	if err != nil || price <= 0 {
		c.printf("price must be a positive number\n")
		return
	}
	p, ok := c.product(args[:1])
	if !ok {
		return
	}
	p.Price = price
	c.store.UpdateProduct(p)
	c.printf("%s now costs ₹%.2f\n", p.Name, p.Price)
}

func (c *console) status() {
	snap := c.store.Snapshot()
	conn := "offline"
	if snap.Online {
		conn = "online"
	}
	if snap.Loading {
		conn += " (syncing)"
	}
	who := "guest"
	if snap.User != nil {
		who = fmt.Sprintf("%s <%s> %s", snap.User.Name, snap.User.Email, snap.User.Role)
	}
	c.printf("%s | %s | theme %s | %d products | %d in cart | %d orders\n",
		conn, who, snap.Theme, len(snap.Products), snap.CartCount(), len(snap.Orders))
}

func describe(err error) string {
	switch {
	case errors.Is(err, store.ErrInvalidCredentials):
		return "invalid credentials"
	case errors.Is(err, store.ErrOffline):
		return "the storefront is offline, try again later"
	case errors.Is(err, store.ErrEmailTaken):
		return "that email is already registered"
	case errors.Is(err, model.ErrInvalidTransition):
		return "that status change is not allowed"
	case errors.Is(err, store.ErrForbidden):
		return "admins only"
	}
	return err.Error()
}
