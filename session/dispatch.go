package session

import (
	"fmt"
	"time"

	"mashbot/domain"
	"mashbot/protocol"
	"mashbot/utils"
)

// onFrame は受信フレームをデコードしてディスパッチします。
// デコードに失敗したフレームは報告して捨て、次のフレームの処理を続けます。
func (s *Session) onFrame(c *conn, data []byte) {
	if c.closing {
		return
	}
	msg, err := protocol.DecodeServer(data)
	if err != nil {
		s.metrics.decodeErrors.Add(s.ctx, 1)
		s.report(fmt.Errorf("%s frame: %w", c.role, err))
		return
	}
	s.metrics.messageReceived(s.ctx, msg.Kind())
	s.dispatch(c, msg)
}

func (s *Session) dispatch(c *conn, msg protocol.ServerMessage) {
	switch m := msg.(type) {
	case *protocol.Login:
		s.handleLogin(m)
	case *protocol.BackupAck:
		s.state = s.state.BackupOpened()
		s.logger.Debug("session: backup acknowledged", "conn", c.id)
	case *protocol.PingResult:
		s.world.SetPing(time.Duration(m.Ping) * time.Millisecond)
	case *protocol.Error:
		s.report(fmt.Errorf("%w: code %d", ErrServer, m.Code))
	case *protocol.ServerNotice:
		s.logger.Info("session: server notice", "type", m.Type, "text", m.Text)

	case *protocol.PlayerNew:
		s.handlePlayerNew(m)
	case *protocol.PlayerLeave:
		s.world.RemovePlayer(m.ID)
	case *protocol.PlayerUpdate:
		s.handlePlayerUpdate(m)
	case *protocol.PlayerRespawn:
		s.handlePlayerRespawn(m)
	case *protocol.PlayerType:
		s.world.UpdatePlayer(m.ID, func(p *domain.Player) {
			p.SetType(domain.AircraftType(m.Type))
		})
	case *protocol.PlayerKill:
		s.world.MarkDead(m.ID)
		s.observer.OnKill(m.ID, m.Killer)

	case *protocol.PlayerFire:
		s.handlePlayerFire(m)
	case *protocol.PlayerHit:
		s.handlePlayerHit(m)
	case *protocol.EventBoost:
		s.handleBoost(m)
	case *protocol.EventRepel:
		s.handleRepel(m)
	case *protocol.EventLeaveHorizon:
		s.handleLeaveHorizon(m)
	case *protocol.EventStealth:
		s.world.UpdatePlayer(m.ID, func(p *domain.Player) {
			p.Stealth = m.State
			p.Energy = m.Energy
			p.EnergyRegen = m.EnergyRegen
		})

	case *protocol.MobUpdate:
		s.upsertMob(domain.Mob{ID: m.ID, Type: m.Type, X: m.PosX, Y: m.PosY, SpeedX: m.SpeedX, SpeedY: m.SpeedY})
	case *protocol.MobUpdateStationary:
		s.upsertMob(domain.Mob{ID: m.ID, Type: m.Type, X: m.PosX, Y: m.PosY, Stationary: true})
	case *protocol.MobDespawn:
		s.world.RemoveMob(m.ID)
	case *protocol.MobDespawnCoords:
		s.world.RemoveMob(m.ID)

	case *protocol.ChatPublic:
		s.observer.OnChat(ChatEvent{Kind: ChatPublic, From: m.ID, Text: m.Text})
	case *protocol.ChatSay:
		s.observer.OnChat(ChatEvent{Kind: ChatSay, From: m.ID, Text: m.Text})
	case *protocol.ChatTeam:
		s.observer.OnChat(ChatEvent{Kind: ChatTeam, From: m.ID, Text: m.Text})
	case *protocol.ChatWhisper:
		s.observer.OnChat(ChatEvent{Kind: ChatWhisper, From: m.From, To: m.To, Text: m.Text})

	case *protocol.ScoreUpdate:
		s.handleScoreUpdate(m)
	case *protocol.ScoreBoard:
		s.handleScoreBoard(m)

	default:
		// Ping, EventBounce, PlayerPowerup, Unknown
		s.logger.Debug("session: message ignored", "kind", msg.Kind())
	}
}

func (s *Session) handleLogin(m *protocol.Login) {
	if !m.Success {
		s.report(ErrLoginRejected)
		return
	}

	st, plan := s.state.AcceptLogin(m.Token, m.ID, s.backup != nil)
	s.state = st

	if s.keepalive != nil {
		s.keepalive.Cancel()
	}
	s.keepalive = s.sched.Every(s.cfg.KeepaliveInterval, s.ackTick)
	if s.pruner != nil {
		s.pruner.Cancel()
	}
	s.pruner = s.sched.Every(domain.StaleAfter, s.prune)

	if plan.CloseBackup {
		s.backup.close("replaced")
		s.backup = nil
	}
	s.dial(RoleBackup)

	s.world.Reset()
	now := s.world.Now()
	for _, lp := range m.Players {
		if !utils.Finite(lp.PosX, lp.PosY, lp.Rot) {
			s.logger.Warn("session: roster entry with invalid position", "id", lp.ID)
			continue
		}
		s.world.UpsertPlayer(lp.ID, func(p *domain.Player) {
			p.Name = lp.Name
			p.Team = lp.Team
			p.SetType(domain.AircraftType(lp.Type))
			p.Flag = lp.Flag
			p.Upgrades = lp.Upgrades
			p.Dead = lp.Status != 0
			p.Rot = lp.Rot
			p.SetPos(lp.PosX, lp.PosY, now)
		})
	}
	s.world.SetSelf(m.ID)

	s.logger.Info("session: logged in", "id", m.ID, "team", m.Team, "room", m.Room, "players", len(m.Players))
	s.observer.OnStart(m.ID)
}

func (s *Session) handlePlayerNew(m *protocol.PlayerNew) {
	if !utils.Finite(m.PosX, m.PosY, m.Rot) {
		s.report(fmt.Errorf("player %d joined with invalid position", m.ID))
		return
	}
	now := s.world.Now()
	s.world.UpsertPlayer(m.ID, func(p *domain.Player) {
		p.Name = m.Name
		p.Team = m.Team
		p.SetType(domain.AircraftType(m.Type))
		p.Flag = m.Flag
		p.Upgrades = m.Upgrades
		p.Dead = m.Status != 0
		p.Hidden = false
		p.Rot = m.Rot
		p.SetPos(m.PosX, m.PosY, now)
	})
}

func (s *Session) handlePlayerUpdate(m *protocol.PlayerUpdate) {
	if !utils.Finite(m.PosX, m.PosY, m.Rot, m.SpeedX, m.SpeedY) {
		s.report(fmt.Errorf("player %d update with invalid position", m.ID))
		return
	}
	now := s.world.Now()
	s.world.UpdatePlayer(m.ID, func(p *domain.Player) {
		p.Keystate = m.Keystate
		p.Upgrades = m.Upgrades
		p.Rot = m.Rot
		p.SpeedX = m.SpeedX
		p.SpeedY = m.SpeedY
		p.Hidden = false
		p.SetPos(m.PosX, m.PosY, now)
	})
}

func (s *Session) handlePlayerRespawn(m *protocol.PlayerRespawn) {
	if !utils.Finite(m.PosX, m.PosY, m.Rot) {
		s.report(fmt.Errorf("player %d respawned with invalid position", m.ID))
		return
	}
	now := s.world.Now()
	known := s.world.UpdatePlayer(m.ID, func(p *domain.Player) {
		p.Dead = false
		p.Stealth = false
		p.Hidden = false
		p.Health = 1
		p.Energy = 1
		p.Upgrades = m.Upgrades
		p.Rot = m.Rot
		p.SpeedX, p.SpeedY = 0, 0
		p.SetPos(m.PosX, m.PosY, now)
	})
	if known {
		s.observer.OnRespawn(m.ID)
	}
}

func (s *Session) handlePlayerFire(m *protocol.PlayerFire) {
	s.world.UpdatePlayer(m.ID, func(p *domain.Player) {
		p.Energy = m.Energy
		p.EnergyRegen = m.EnergyRegen
	})
	for _, pr := range m.Projectiles {
		s.upsertMob(domain.Mob{
			ID:      pr.ID,
			OwnerID: m.ID,
			Type:    pr.Type,
			X:       pr.PosX,
			Y:       pr.PosY,
			Rot:     pr.Rot,
			SpeedX:  pr.SpeedX,
			SpeedY:  pr.SpeedY,
		})
	}
}

func (s *Session) handlePlayerHit(m *protocol.PlayerHit) {
	for _, hp := range m.Players {
		known := s.world.UpdatePlayer(hp.ID, func(p *domain.Player) {
			p.Health = hp.Health
			p.HealthRegen = hp.HealthRegen
		})
		if known {
			s.observer.OnHit(hp.ID)
		}
	}
}

func (s *Session) handleBoost(m *protocol.EventBoost) {
	valid := utils.Finite(m.PosX, m.PosY, m.Rot, m.SpeedX, m.SpeedY)
	now := s.world.Now()
	s.world.UpdatePlayer(m.ID, func(p *domain.Player) {
		p.Energy = m.Energy
		p.EnergyRegen = m.EnergyRegen
		if valid {
			p.Rot = m.Rot
			p.SpeedX = m.SpeedX
			p.SpeedY = m.SpeedY
			p.SetPos(m.PosX, m.PosY, now)
		}
	})
}

func (s *Session) handleRepel(m *protocol.EventRepel) {
	now := s.world.Now()
	s.world.UpdatePlayer(m.ID, func(p *domain.Player) {
		p.Energy = m.Energy
		p.EnergyRegen = m.EnergyRegen
		if utils.Finite(m.PosX, m.PosY, m.Rot, m.SpeedX, m.SpeedY) {
			p.Rot = m.Rot
			p.SpeedX = m.SpeedX
			p.SpeedY = m.SpeedY
			p.SetPos(m.PosX, m.PosY, now)
		}
	})
	for _, rp := range m.Players {
		s.world.UpdatePlayer(rp.ID, func(p *domain.Player) {
			p.Keystate = rp.Keystate
			p.Energy = rp.Energy
			p.EnergyRegen = rp.EnergyRegen
			p.Health = rp.Health
			p.HealthRegen = rp.HealthRegen
			if utils.Finite(rp.PosX, rp.PosY, rp.Rot, rp.SpeedX, rp.SpeedY) {
				p.Rot = rp.Rot
				p.SpeedX = rp.SpeedX
				p.SpeedY = rp.SpeedY
				p.SetPos(rp.PosX, rp.PosY, now)
			}
		})
	}
	for _, rm := range m.Mobs {
		s.upsertMob(domain.Mob{
			ID:      rm.ID,
			OwnerID: m.ID,
			Type:    rm.Type,
			X:       rm.PosX,
			Y:       rm.PosY,
			SpeedX:  rm.SpeedX,
			SpeedY:  rm.SpeedY,
		})
	}
}

// handleLeaveHorizon は視界外に出たプレイヤーを隠し、Mob は削除します。
// プレイヤーは次の位置更新で再び見えるようになります。
func (s *Session) handleLeaveHorizon(m *protocol.EventLeaveHorizon) {
	switch m.Type {
	case protocol.HorizonPlayer:
		s.world.UpdatePlayer(m.ID, func(p *domain.Player) {
			p.Hidden = true
		})
	case protocol.HorizonMob:
		s.world.RemoveMob(m.ID)
	default:
		s.logger.Debug("session: leave horizon for unknown type", "type", m.Type, "id", m.ID)
	}
}

func (s *Session) upsertMob(m domain.Mob) {
	if !utils.Finite(m.X, m.Y, m.SpeedX, m.SpeedY, m.Rot) {
		s.report(fmt.Errorf("mob %d with invalid position", m.ID))
		return
	}
	s.world.UpsertMob(m)
}

func (s *Session) handleScoreUpdate(m *protocol.ScoreUpdate) {
	if id, ok := s.world.MyID(); ok && id != m.ID {
		return
	}
	s.world.SetScore(m.Score)
	s.observer.OnScore(m.Score, m.Upgrades)
}

func (s *Session) handleScoreBoard(m *protocol.ScoreBoard) {
	for _, rk := range m.Rankings {
		x, y := protocol.DecodeMinimap(rk.X, rk.Y)
		s.world.UpdatePlayer(rk.ID, func(p *domain.Player) {
			p.SetLowResPos(x, y)
		})
	}
}
